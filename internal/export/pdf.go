// Package export renders cut job tickets and purchase orders to PDF and
// XLSX for printing at the register.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cutdesk/internal/model"
)

// Page layout constants (US Letter portrait in mm).
const (
	pageWidth    = 215.9
	pageHeight   = 279.4
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// purchaseOrderColumns are the item table columns of a purchase order page.
var purchaseOrderColumns = []struct {
	header string
	width  float64
	align  string
}{
	{"Material", 52, "L"},
	{"Current Stock", 24, "R"},
	{"Threshold", 20, "R"},
	{"Order Qty", 22, "R"},
	{"Unit Cost", 22, "R"},
	{"Line Total", 26, "R"},
	{"", 19.9, "C"},
}

// ExportPurchaseOrdersPDF writes orders as a PDF file at path, creating
// parent directories as needed.
func ExportPurchaseOrdersPDF(path string, orders []model.SupplierOrder, store model.AppConfig, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePurchaseOrdersPDF(f, orders, store, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePurchaseOrdersPDF renders one page per supplier order followed by
// a summary page with the grand total.
func WritePurchaseOrdersPDF(w io.Writer, orders []model.SupplierOrder, store model.AppConfig, now time.Time) error {
	if len(orders) == 0 {
		return fmt.Errorf("no purchase orders to export")
	}

	return buildPurchaseOrdersPDF(orders, store, now).Output(w)
}

func buildPurchaseOrdersPDF(orders []model.SupplierOrder, store model.AppConfig, now time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, order := range orders {
		pdf.AddPage()
		renderOrderPage(pdf, order, store, now)
	}

	pdf.AddPage()
	renderOrderSummaryPage(pdf, orders, store, now)
	return pdf
}

// tableBottom is the lowest y at which another table row may start.
const tableBottom = pageHeight - marginBottom - 20

func renderStoreHeader(pdf *fpdf.Fpdf, store model.AppConfig, y float64) float64 {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 8, store.StoreName, "", 0, "L", false, 0, "")
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	for _, line := range []string{store.StoreAddress, store.StorePhone} {
		if line == "" {
			continue
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 4.5, line, "", 0, "L", false, 0, "")
		y += 4.5
	}
	pdf.SetTextColor(0, 0, 0)
	return y + 4
}

// renderTableHeader draws a shaded header row at y and returns the y
// below it.
func renderTableHeader(pdf *fpdf.Fpdf, y float64, headers []string, widths []float64) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += widths[i]
	}
	pdf.SetFont("Helvetica", "", 9)
	return y + 6
}

// continuePage closes the current page and starts another, returning the
// y of its first free line.
func continuePage(pdf *fpdf.Fpdf) float64 {
	renderFooter(pdf)
	pdf.AddPage()
	return marginTop
}

// renderOrderPage draws a single supplier purchase order. Long item
// tables continue on further pages with the header row repeated.
func renderOrderPage(pdf *fpdf.Fpdf, order model.SupplierOrder, store model.AppConfig, now time.Time) {
	y := renderStoreHeader(pdf, store, marginTop)

	// Title and PO number
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth/2, 8, "PURCHASE ORDER", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth/2, 8, order.Number, "", 0, "R", false, 0, "")
	y += 10

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth/2, 5, "Supplier: "+order.Supplier, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWidth/2, 5, "Date: "+now.Format("2006-01-02"), "", 0, "R", false, 0, "")
	y += 6

	// Priority
	pdf.SetXY(marginLeft, y)
	if order.Urgent() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentWidth, 5, "Priority: URGENT", "", 0, "L", false, 0, "")
	} else {
		pdf.CellFormat(contentWidth, 5, "Priority: Standard", "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	y += 9

	headers := make([]string, len(purchaseOrderColumns))
	widths := make([]float64, len(purchaseOrderColumns))
	for i, col := range purchaseOrderColumns {
		headers[i] = col.header
		widths[i] = col.width
	}
	y = renderTableHeader(pdf, y, headers, widths)

	for i, item := range order.Items {
		if y > tableBottom {
			y = renderTableHeader(pdf, continuePage(pdf), headers, widths)
		}
		marker := ""
		if item.Critical() {
			marker = "CRITICAL"
		}
		rowData := []string{
			item.Material.Name,
			fmt.Sprintf("%.1f ft", item.Material.CurrentStock),
			fmt.Sprintf("%.1f ft", item.Material.ReorderThreshold),
			fmt.Sprintf("%.1f ft", item.OrderQuantity),
			formatMoney(item.Material.UnitCost),
			formatMoney(item.TotalCost),
			marker,
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos := marginLeft
		for j, cell := range rowData {
			col := purchaseOrderColumns[j]
			pdf.SetXY(xPos, y)
			if marker != "" && j == len(rowData)-1 {
				pdf.SetFont("Helvetica", "B", 8)
				pdf.SetTextColor(200, 0, 0)
			}
			pdf.CellFormat(col.width, 6, cell, "1", 0, col.align, true, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(0, 0, 0)
			xPos += col.width
		}
		y += 6
	}

	// Order total
	if y > tableBottom {
		y = continuePage(pdf)
	}
	y += 3
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth-45.9, 7, "Order Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(45.9, 7, formatMoney(order.TotalCost), "", 0, "R", false, 0, "")

	renderFooter(pdf)
}

// renderOrderSummaryPage lists every supplier order and the grand total.
func renderOrderSummaryPage(pdf *fpdf.Fpdf, orders []model.SupplierOrder, store model.AppConfig, now time.Time) {
	y := renderStoreHeader(pdf, store, marginTop)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 8, "Reorder Summary", "", 0, "L", false, 0, "")
	y += 9

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 5, "Generated "+now.Format("2006-01-02 15:04"), "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{45, 70, 20, 25, 25.9}
	headers := []string{"PO Number", "Supplier", "Items", "Priority", "Total"}
	y = renderTableHeader(pdf, y, headers, colWidths)

	items := 0
	for i, order := range orders {
		if y > tableBottom {
			y = renderTableHeader(pdf, continuePage(pdf), headers, colWidths)
		}
		items += len(order.Items)
		priority := "Standard"
		if order.Urgent() {
			priority = "URGENT"
		}
		rowData := []string{
			order.Number,
			order.Supplier,
			fmt.Sprintf("%d", len(order.Items)),
			priority,
			formatMoney(order.TotalCost),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos := marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Totals block needs about 27mm
	if y > pageHeight-marginBottom-30 {
		y = continuePage(pdf)
	}
	y += 6
	summaryItems := []struct {
		label string
		value string
	}{
		{"Suppliers", fmt.Sprintf("%d", len(orders))},
		{"Line Items", fmt.Sprintf("%d", items)},
		{"Grand Total", formatMoney(model.GrandTotal(orders))},
	}
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft, y)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(40, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		y += 7
	}

	renderFooter(pdf)
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(contentWidth, 4, "Generated by CutDesk", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// formatMoney renders an amount with two decimals.
func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", model.Round2(v))
}
