package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cutdesk/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// Ticket layout constants (A6 portrait in mm).
const (
	ticketWidth   = 105.0
	ticketHeight  = 148.0
	ticketMargin  = 8.0
	ticketContent = ticketWidth - 2*ticketMargin
	ticketQRSize  = 32.0
)

// TicketQRPayload returns the JSON encoded into a ticket's QR code.
func TicketQRPayload(t model.Ticket) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ticket: %w", err)
	}
	return data, nil
}

// ExportTicket writes the ticket as a PDF file at path.
func ExportTicket(path string, t model.Ticket, store model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTicket(f, t, store); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTicket renders a single order ticket: store header, the order code
// in large type, a QR code carrying the ticket JSON and the job details.
func WriteTicket(w io.Writer, t model.Ticket, store model.AppConfig) error {
	if t.OrderCode == "" {
		return fmt.Errorf("ticket has no order code")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: ticketWidth, Ht: ticketHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(ticketMargin, ticketMargin, ticketMargin)
	pdf.AddPage()

	// Store header
	y := ticketMargin
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetXY(ticketMargin, y)
	pdf.CellFormat(ticketContent, 6, store.StoreName, "", 0, "C", false, 0, "")
	y += 6
	if store.StorePhone != "" {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(90, 90, 90)
		pdf.SetXY(ticketMargin, y)
		pdf.CellFormat(ticketContent, 4, store.StorePhone, "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		y += 4
	}
	y += 2
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(ticketMargin, y, ticketWidth-ticketMargin, y)
	y += 3

	// Order code
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(ticketMargin, y)
	pdf.CellFormat(ticketContent, 4, "ORDER CODE", "", 0, "C", false, 0, "")
	y += 4
	pdf.SetFont("Courier", "B", 30)
	pdf.SetXY(ticketMargin, y)
	pdf.CellFormat(ticketContent, 13, t.OrderCode, "", 0, "C", false, 0, "")
	y += 14

	// QR code
	payload, err := TicketQRPayload(t)
	if err != nil {
		return err
	}
	qrPNG, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	imgName := "qr_ticket_" + t.OrderCode
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, (ticketWidth-ticketQRSize)/2, y, ticketQRSize, ticketQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	y += ticketQRSize + 3

	// Job details
	details := []struct {
		label string
		value string
	}{
		{"Customer", t.CustomerName},
		{"Material", t.MaterialName},
		{"Length", fmt.Sprintf("%.2f ft", t.Length)},
		{"Quantity", fmt.Sprintf("%d", t.Quantity)},
		{"Total Length", fmt.Sprintf("%.2f ft", t.TotalLength)},
		{"Status", string(t.Status)},
		{"Created", t.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, d := range details {
		if d.value == "" {
			continue
		}
		pdf.SetXY(ticketMargin, y)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(28, 5, d.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(ticketContent-28, 5, truncate(pdf, d.value, ticketContent-28), "", 0, "L", false, 0, "")
		y += 5
	}

	if t.Notes != "" {
		y += 1
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(ticketMargin, y)
		pdf.MultiCell(ticketContent, 4, "Notes: "+t.Notes, "", "L", false)
		y = pdf.GetY()
	}

	// Total
	y += 3
	pdf.Line(ticketMargin, y, ticketWidth-ticketMargin, y)
	y += 2
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(ticketMargin, y)
	pdf.CellFormat(ticketContent/2, 8, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(ticketContent/2, 8, formatMoney(t.TotalCost), "", 0, "R", false, 0, "")

	// Footer
	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(ticketMargin, ticketHeight-ticketMargin-4)
	pdf.CellFormat(ticketContent, 4, "Present this ticket at the cutting station.", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return pdf.Output(w)
}

// truncate shortens s with an ellipsis so it fits in width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
