package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/application/dto"
	"github.com/xuri/excelize/v2"
)

const (
	requisitionsSheet = "Requisitions"
	lineItemsSheet    = "Line Items"
)

var requisitionHeaders = []string{
	"Period", "Emergency", "Status", "Supervisory Node", "Supplying Facility", "Lines", "Total Cost", "Currency",
}

var lineItemHeaders = []string{
	"Period", "Product", "Full Supply", "Skipped", "Beginning Balance", "Received", "Consumed",
	"Losses and Adjustments", "Stock on Hand", "Stockout Days", "Adjusted Consumption",
	"Average Consumption", "Maximum Stock", "Calculated Order Qty", "Requested", "Explanation",
	"Approved", "Packs to Ship", "Price per Pack", "Total Cost",
}

// generateXLSXOutput writes a workbook with a requisition sheet and a line item sheet
func generateXLSXOutput(requisitions []*dto.RequisitionDto, labels Labels, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := BuildWorkbook(requisitions, labels)
	if err != nil {
		return err
	}
	defer f.Close()

	filename := filepath.Join(config.OutputDir, "requisitions.xlsx")
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write xlsx file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Writer, "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

// BuildWorkbook lays out requisitions and their line items in a new workbook
func BuildWorkbook(requisitions []*dto.RequisitionDto, labels Labels) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", requisitionsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, requisitionsSheet, requisitionHeaders, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, lineItemsSheet, lineItemHeaders, headerStyle); err != nil {
		return nil, err
	}

	lineRow := 2
	for i, r := range requisitions {
		period := labels.period(r.ProcessingPeriodID)
		row := []interface{}{
			period, r.Emergency, r.Status.String(), optionalID(r.SupervisoryNode), optionalID(r.SupplyingFacility),
			len(r.RequisitionLineItems), nil, nil,
		}
		if r.TotalCost != nil {
			row[6] = r.TotalCost.Amount.InexactFloat64()
			row[7] = r.TotalCost.Currency
		}
		if err := writeRow(f, requisitionsSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, line := range r.RequisitionLineItems {
			values := []interface{}{
				period,
				labels.product(line.OrderableID),
				!line.NonFullSupply,
				line.Skipped,
				cellQuantity(line.BeginningBalance),
				cellQuantity(line.TotalReceivedQuantity),
				cellQuantity(line.TotalConsumedQuantity),
				cellQuantity(line.TotalLossesAndAdjustments),
				cellQuantity(line.StockOnHand),
				cellQuantity(line.TotalStockoutDays),
				cellQuantity(line.AdjustedConsumption),
				cellQuantity(line.AverageConsumption),
				cellQuantity(line.MaximumStockQuantity),
				cellQuantity(line.CalculatedOrderQuantity),
				cellQuantity(line.RequestedQuantity),
				line.RequestedQuantityExplanation,
				cellQuantity(line.ApprovedQuantity),
				cellQuantity(line.PacksToShip),
				cellMoney(line.PricePerPack),
				cellMoney(line.TotalCost),
			}
			if err := writeRow(f, lineItemsSheet, lineRow, values); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	for _, sheet := range []string{requisitionsSheet, lineItemsSheet} {
		if err := f.SetColWidth(sheet, "A", "B", 14); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to name column %d: %w", i+1, err)
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", h, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header %s: %w", h, err)
		}
	}
	return nil
}

// writeRow leaves nil values as empty cells
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cellQuantity(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func cellMoney(m *dto.MoneyDto) interface{} {
	if m == nil {
		return nil
	}
	return m.Amount.InexactFloat64()
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
