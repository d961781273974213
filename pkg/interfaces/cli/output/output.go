package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Writer receives text output and JSON without an output directory.
	// Defaults to os.Stdout.
	Writer io.Writer
}

// Labels maps ids to the names shown in reports
type Labels struct {
	Periods  map[uuid.UUID]string
	Products map[uuid.UUID]string
}

func (l Labels) period(id uuid.UUID) string {
	if name, ok := l.Periods[id]; ok {
		return name
	}
	return id.String()
}

func (l Labels) product(id uuid.UUID) string {
	if code, ok := l.Products[id]; ok {
		return code
	}
	return id.String()
}

// Generate writes the requisitions in the configured format
func Generate(requisitions []*dto.RequisitionDto, labels Labels, config Config) error {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	switch config.Format {
	case "text", "":
		return generateTextOutput(requisitions, labels, config)
	case "json":
		return generateJSONOutput(requisitions, config)
	case "xlsx":
		return generateXLSXOutput(requisitions, labels, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints one table per requisition
func generateTextOutput(requisitions []*dto.RequisitionDto, labels Labels, config Config) error {
	w := &bytes.Buffer{}
	fmt.Fprintf(w, "📊 Requisition Summary\n")
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Requisitions: %d\n\n", len(requisitions))

	for _, r := range requisitions {
		kind := "regular"
		if r.Emergency {
			kind = "emergency"
		}
		fmt.Fprintf(w, "📋 %s (%s) %s\n", labels.period(r.ProcessingPeriodID), kind, r.Status)
		if r.TotalCost != nil {
			fmt.Fprintf(w, "Total cost: %s %s\n", r.TotalCost.Currency, r.TotalCost.Amount.StringFixed(2))
		}

		fmt.Fprintf(w, "%-12s %-8s %-8s %-8s %-8s %-8s %-8s %-8s %-8s\n",
			"Product", "BB", "Recv", "Cons", "SOH", "AMC", "COQ", "Appr", "Packs")
		fmt.Fprintf(w, "%-12s %-8s %-8s %-8s %-8s %-8s %-8s %-8s %-8s\n",
			"------------", "--------", "--------", "--------", "--------", "--------", "--------", "--------", "--------")

		for _, line := range r.RequisitionLineItems {
			name := labels.product(line.OrderableID)
			if line.Skipped {
				fmt.Fprintf(w, "%-12s skipped\n", name)
				continue
			}
			fmt.Fprintf(w, "%-12s %-8s %-8s %-8s %-8s %-8s %-8s %-8s %-8s\n",
				name,
				quantity(line.BeginningBalance),
				quantity(line.TotalReceivedQuantity),
				quantity(line.TotalConsumedQuantity),
				quantity(line.StockOnHand),
				quantity(line.AverageConsumption),
				quantity(line.CalculatedOrderQuantity),
				quantity(line.ApprovedQuantity),
				quantity(line.PacksToShip))
		}
		fmt.Fprintln(w)
	}

	if _, err := config.Writer.Write(w.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := filepath.Join(config.OutputDir, "requisitions.txt")
		if err := os.WriteFile(filename, w.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write text file: %w", err)
		}
		if config.Verbose {
			fmt.Fprintf(config.Writer, "💾 Results saved to: %s\n", filename)
		}
	}

	return nil
}

// generateJSONOutput writes the requisition dtos as JSON
func generateJSONOutput(requisitions []*dto.RequisitionDto, config Config) error {
	jsonData, err := json.MarshalIndent(requisitions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.Writer, string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "requisitions.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Writer, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

func quantity(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
