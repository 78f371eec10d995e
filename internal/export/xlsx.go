package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var workbookHeaders = []string{"Material", "Type", "Current Stock (ft)", "Threshold (ft)", "Suggested (ft)", "Order Qty (ft)", "Unit Cost", "Line Total", "Critical"}

// ExportPurchaseOrdersXLSX writes orders as an XLSX workbook at path.
func ExportPurchaseOrdersXLSX(path string, orders []model.SupplierOrder) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePurchaseOrdersXLSX(f, orders); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePurchaseOrdersXLSX renders one sheet per supplier order plus a
// Summary sheet listing every order and the grand total.
func WritePurchaseOrdersXLSX(w io.Writer, orders []model.SupplierOrder) error {
	if len(orders) == 0 {
		return fmt.Errorf("no purchase orders to export")
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", summarySheet)

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for _, order := range orders {
		sheet := sheetName(order, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet for %s: %w", order.Supplier, err)
		}

		f.SetCellValue(sheet, "A1", "Purchase Order")
		f.SetCellValue(sheet, "B1", order.Number)
		f.SetCellValue(sheet, "A2", "Supplier")
		f.SetCellValue(sheet, "B2", order.Supplier)
		f.SetCellValue(sheet, "A3", "Priority")
		if order.Urgent() {
			f.SetCellValue(sheet, "B3", "URGENT")
		} else {
			f.SetCellValue(sheet, "B3", "Standard")
		}

		for i, h := range workbookHeaders {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := fmt.Sprintf("%s5", col)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, boldStyle)
		}

		row := 6
		for _, item := range order.Items {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Material.Name)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(item.Material.Type))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Material.CurrentStock)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Material.ReorderThreshold)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.SuggestedQuantity)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.OrderQuantity)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.Material.UnitCost)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), model.Round2(item.TotalCost))
			if item.Critical() {
				f.SetCellValue(sheet, fmt.Sprintf("I%d", row), "CRITICAL")
			}
			f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("H%d", row), moneyStyle)
			row++
		}
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), "Total")
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), model.Round2(order.TotalCost))
		f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("H%d", row), boldStyle)

		for i, w := range []float64{28, 10, 18, 15, 15, 15, 12, 14, 10} {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(sheet, col, col, w)
		}
	}

	// Summary sheet
	for i, h := range []string{"PO Number", "Supplier", "Items", "Priority", "Total"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", col)
		f.SetCellValue(summarySheet, cell, h)
		f.SetCellStyle(summarySheet, cell, cell, boldStyle)
	}
	row := 2
	for _, order := range orders {
		priority := "Standard"
		if order.Urgent() {
			priority = "URGENT"
		}
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), order.Number)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), order.Supplier)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), len(order.Items))
		f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), priority)
		f.SetCellValue(summarySheet, fmt.Sprintf("E%d", row), model.Round2(order.TotalCost))
		f.SetCellStyle(summarySheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), moneyStyle)
		row++
	}
	f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), "Grand Total")
	f.SetCellValue(summarySheet, fmt.Sprintf("E%d", row), model.Round2(model.GrandTotal(orders)))
	f.SetCellStyle(summarySheet, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), boldStyle)
	for i, w := range []float64{18, 30, 8, 12, 14} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(summarySheet, col, col, w)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName derives a unique worksheet name from the supplier. Excel
// limits names to 31 characters and forbids : \ / ? * [ ].
func sheetName(order model.SupplierOrder, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(order.Supplier))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Supplier"
	}
	base := truncateRunes(name, 31)
	name = base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
