package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportReport renders an aggregation result as an xlsx workbook with
// Summary, By Marketplace, By Product and By Day sheets.
func ExportReport(result *AggregationResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := writeMarketplaceSheet(f, result); err != nil {
		return nil, err
	}
	if err := writeProductSheet(f, result); err != nil {
		return nil, err
	}
	if err := writeDaySheet(f, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf, nil
}

func writeSummarySheet(f *excelize.File, result *AggregationResult) error {
	sum := result.Summary
	period := result.StartDate + " .. " + result.EndDate
	if result.Marketplace != "" {
		period += " (" + result.Marketplace + ")"
	}
	rows := [][]interface{}{
		{"Period", period},
		{},
		{"", "Revenue", "Quantity", "Orders"},
		{"Gross", sum.Gross.Revenue, sum.Gross.Quantity, sum.Gross.Orders},
		{"Cancelled", sum.Cancelled.Revenue, sum.Cancelled.Quantity, sum.Cancelled.Orders},
		{"  Order Cancelled", sum.CancelledDetail.OrderCancelledRevenue},
		{"  Returned", sum.CancelledDetail.ReturnedRevenue},
		{"Net", sum.Net.Revenue, sum.Net.Quantity, sum.Net.Orders},
		{},
		{"Shipping Collected", sum.ShippingCollected},
		{"Product Cost", sum.Profitability.ProductCost},
		{"Shipping Expense", sum.Profitability.ShippingExpense},
		{"Commission Expense", sum.Profitability.CommissionExpense},
		{"Net Profit", sum.Profitability.NetProfit},
		{"Margin %", sum.Profitability.MarginPercent},
	}
	return writeRows(f, "Summary", rows)
}

func writeMarketplaceSheet(f *excelize.File, result *AggregationResult) error {
	if _, err := f.NewSheet("By Marketplace"); err != nil {
		return fmt.Errorf("failed to create marketplace sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Marketplace", "Net Revenue", "Cancelled Revenue", "Net Quantity", "Orders", "Commission"},
	}
	for _, mp := range result.ByMarketplace {
		rows = append(rows, []interface{}{
			mp.Marketplace, mp.NetRevenue, mp.CancelledRevenue, mp.NetQuantity, mp.Orders, mp.Commission,
		})
	}
	return writeRows(f, "By Marketplace", rows)
}

func writeProductSheet(f *excelize.File, result *AggregationResult) error {
	if _, err := f.NewSheet("By Product"); err != nil {
		return fmt.Errorf("failed to create product sheet: %w", err)
	}
	rows := [][]interface{}{
		{"SKU", "Name", "Net Revenue", "Quantity", "Cost", "Profit", "Margin %"},
	}
	for _, p := range result.ByProduct {
		rows = append(rows, []interface{}{p.SKU, p.Name, p.NetRevenue, p.Quantity, p.Cost, p.Profit, p.MarginPercent})
	}
	return writeRows(f, "By Product", rows)
}

func writeDaySheet(f *excelize.File, result *AggregationResult) error {
	if _, err := f.NewSheet("By Day"); err != nil {
		return fmt.Errorf("failed to create day sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Date", "Net Revenue", "Orders", "Quantity"},
	}
	for _, d := range result.ByDay {
		rows = append(rows, []interface{}{d.Date, d.NetRevenue, d.Orders, d.Quantity})
	}
	return writeRows(f, "By Day", rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
