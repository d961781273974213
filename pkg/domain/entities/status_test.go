package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestRequisitionStatus_Predicates(t *testing.T) {
	testCases := []struct {
		status         RequisitionStatus
		submittable    bool
		preAuthorize   bool
		postSubmitted  bool
		duringApproval bool
		approved       bool
	}{
		{Initiated, true, true, false, false, false},
		{Rejected, true, true, false, false, false},
		{Submitted, false, true, true, false, false},
		{Authorized, false, false, true, true, false},
		{InApproval, false, false, true, true, false},
		{Approved, false, false, true, false, true},
		{Released, false, false, true, false, true},
		{Skipped, false, false, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			if tc.status.IsSubmittable() != tc.submittable {
				t.Errorf("Expected IsSubmittable %v", tc.submittable)
			}
			if tc.status.IsPreAuthorize() != tc.preAuthorize {
				t.Errorf("Expected IsPreAuthorize %v", tc.preAuthorize)
			}
			if tc.status.IsPostSubmitted() != tc.postSubmitted {
				t.Errorf("Expected IsPostSubmitted %v", tc.postSubmitted)
			}
			if tc.status.DuringApproval() != tc.duringApproval {
				t.Errorf("Expected DuringApproval %v", tc.duringApproval)
			}
			if tc.status.IsApproved() != tc.approved {
				t.Errorf("Expected IsApproved %v", tc.approved)
			}
			if tc.status.IsSkipped() != (tc.status == Skipped) {
				t.Errorf("Expected IsSkipped only for SKIPPED")
			}
		})
	}
}

func TestRequisitionStatus_TextEncoding(t *testing.T) {
	text, err := InApproval.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "IN_APPROVAL" {
		t.Errorf("Expected IN_APPROVAL, got %s", text)
	}

	var status RequisitionStatus
	if err := status.UnmarshalText([]byte("RELEASED")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if status != Released {
		t.Errorf("Expected RELEASED, got %s", status)
	}

	if _, err := ParseRequisitionStatus("DRAFT"); err == nil {
		t.Errorf("Expected error for unknown status name")
	}
	if RequisitionStatus(42).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for out of range status")
	}
}

func TestMoney(t *testing.T) {
	eur, err := NewCurrency("EUR", 2)
	if err != nil {
		t.Fatalf("Expected valid currency: %v", err)
	}
	if _, err := NewCurrency("EURO", 2); err == nil {
		t.Errorf("Expected error for 4 letter currency code")
	}
	if _, err := NewCurrency("EUR", -1); err == nil {
		t.Errorf("Expected error for negative minor units")
	}

	a := NewMoney(decimal.RequireFromString("1.005"), eur)
	if a.String() != "EUR 1.01" {
		t.Errorf("Expected EUR 1.01, got %s", a)
	}

	sum, err := a.Plus(NewMoney(decimal.NewFromInt(2), eur))
	if err != nil {
		t.Fatalf("Plus failed: %v", err)
	}
	if !sum.Equal(NewMoney(decimal.RequireFromString("3.01"), eur)) {
		t.Errorf("Expected EUR 3.01, got %s", sum)
	}

	if _, err := a.Plus(ZeroMoney(DefaultCurrency)); err == nil || !strings.Contains(err.Error(), "USD") {
		t.Errorf("Expected currency mismatch error, got %v", err)
	}

	if got := a.Times(3); got.String() != "EUR 3.03" {
		t.Errorf("Expected EUR 3.03, got %s", got)
	}
}

func TestProcessingPeriod(t *testing.T) {
	schedule := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	period, err := NewProcessingPeriod("Jan2025", schedule, start, end, 1)
	if err != nil {
		t.Fatalf("Expected valid period: %v", err)
	}

	if !period.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("Expected end day to be inside the period")
	}
	if period.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected the following day to be outside the period")
	}

	testCases := []struct {
		name        string
		periodName  string
		schedule    uuid.UUID
		start, end  time.Time
		months      int
		expectError string
	}{
		{"empty name", "", schedule, start, end, 1, "period name cannot be empty"},
		{"no schedule", "P", uuid.Nil, start, end, 1, "must belong to a schedule"},
		{"reversed dates", "P", schedule, end, start, 1, "cannot be after end date"},
		{"zero duration", "P", schedule, start, end, 0, "duration in months must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProcessingPeriod(tc.periodName, tc.schedule, tc.start, tc.end, tc.months)
			if err == nil || !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %v", tc.expectError, err)
			}
		})
	}
}
