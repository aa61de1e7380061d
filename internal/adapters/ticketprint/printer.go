package ticketprint

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"eventhub/internal/domain"
)

const pdfQRSize = 256

// Printer renders tickets as QR images and single-page PDFs. The QR payload is the ticket code.
type Printer struct {
	timeLayout string
}

func NewPrinter() *Printer {
	return &Printer{timeLayout: "02 Jan 2006 15:04 MST"}
}

// QRCode returns a PNG of size×size pixels.
func (p *Printer) QRCode(t *domain.TicketView, size int) ([]byte, error) {
	if t == nil || t.Code == "" {
		return nil, fmt.Errorf("ticketprint: ticket code is empty")
	}
	png, err := qrcode.Encode(t.Code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (p *Printer) PDF(t *domain.TicketView) ([]byte, error) {
	qrPNG, err := p.QRCode(t, pdfQRSize)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Ticket "+t.Code, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(t.EventTitle))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Ticket: " + t.TicketType.Name,
		"Price: " + t.TicketType.Price.String(),
		"Status: " + string(t.Status),
	}
	if !t.EventStart.IsZero() {
		lines = append(lines, "Starts: "+t.EventStart.Format(p.timeLayout))
	}
	if t.VenueName != "" {
		lines = append(lines, "Venue: "+t.VenueName)
	}
	lines = append(lines, "Code: "+t.Code)
	for _, l := range lines {
		pdf.Cell(0, 8, tr(l))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 45, 45, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
