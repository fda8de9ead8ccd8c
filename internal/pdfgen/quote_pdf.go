package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"paintquote_backend/internal/models"
)

// Color scheme - warm professional palette for painting quotes
var (
	colorPrimary     = [3]int{142, 68, 16}   // Burnt sienna
	colorTextDark    = [3]int{44, 62, 80}    // Dark text
	colorTextMuted   = [3]int{127, 140, 141} // Muted text
	colorTableHeader = [3]int{142, 68, 16}   // Header fill
	colorTableAlt    = [3]int{249, 244, 238} // Alternating row
	colorGridLine    = [3]int{220, 220, 220}
)

// QuoteData bundles everything the quote document needs.
type QuoteData struct {
	Quote   *models.Quote
	Company *models.Company
	Project *models.Project
}

// Generator renders quotes as PDF documents.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the quote into a single-document PDF.
func (g *Generator) Generate(data *QuoteData) ([]byte, error) {
	if data.Quote == nil || data.Company == nil || data.Project == nil {
		return nil, fmt.Errorf("incomplete quote data")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	g.writeHeader(pdf, data)
	g.writeParties(pdf, data)
	g.writeLinesTable(pdf, data)
	g.writeTotals(pdf, data)
	g.writeFooter(pdf, data)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeHeader(pdf *fpdf.Fpdf, data *QuoteData) {
	pageWidth, _ := pdf.GetPageSize()

	// Top accent bar
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 6, "F")

	pdf.SetY(18)
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 12, data.Company.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 6, "Painting Quote", "", 1, "L", false, 0, "")

	pdf.SetY(18)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, data.Quote.Number, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 6, time.Now().Format("2 January 2006"), "", 1, "R", false, 0, "")

	pdf.SetY(45)
}

func (g *Generator) writeParties(pdf *fpdf.Fpdf, data *QuoteData) {
	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 40) / 2
	top := pdf.GetY()

	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(colWidth, 6, "FROM", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(colWidth, 5, data.Company.Name, "", 1, "L", false, 0, "")
	if data.Company.Address != "" {
		pdf.CellFormat(colWidth, 5, data.Company.Address, "", 1, "L", false, 0, "")
	}
	if data.Company.City != "" {
		pdf.CellFormat(colWidth, 5, data.Company.City, "", 1, "L", false, 0, "")
	}
	if data.Company.VATID != "" {
		pdf.CellFormat(colWidth, 5, "VAT "+data.Company.VATID, "", 1, "L", false, 0, "")
	}

	pdf.SetXY(20+colWidth, top)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(colWidth, 6, "FOR", "", 1, "L", false, 0, "")

	pdf.SetX(20 + colWidth)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	client := data.Project.ClientName
	if client == "" {
		client = data.Project.Name
	}
	pdf.CellFormat(colWidth, 5, client, "", 1, "L", false, 0, "")
	if data.Project.Address != "" {
		pdf.SetX(20 + colWidth)
		pdf.CellFormat(colWidth, 5, data.Project.Address, "", 1, "L", false, 0, "")
	}

	pdf.SetY(pdf.GetY() + 12)
}

func (g *Generator) writeLinesTable(pdf *fpdf.Fpdf, data *QuoteData) {
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 40

	roomW := usable * 0.25
	descW := usable * 0.40
	areaW := usable * 0.11
	rateW := usable * 0.11
	amountW := usable * 0.13

	// Header row
	pdf.SetFillColor(colorTableHeader[0], colorTableHeader[1], colorTableHeader[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(roomW, 8, "Room", "", 0, "L", true, 0, "")
	pdf.CellFormat(descW, 8, "Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(areaW, 8, "m2", "", 0, "R", true, 0, "")
	pdf.CellFormat(rateW, 8, "Rate", "", 0, "R", true, 0, "")
	pdf.CellFormat(amountW, 8, "Amount", "", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])

	for i, line := range data.Quote.Lines {
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
		}
		pdf.CellFormat(roomW, 7, line.RoomName, "", 0, "L", fill, 0, "")
		pdf.CellFormat(descW, 7, line.Description, "", 0, "L", fill, 0, "")
		pdf.CellFormat(areaW, 7, fmt.Sprintf("%.2f", line.AreaM2), "", 0, "R", fill, 0, "")
		pdf.CellFormat(rateW, 7, fmt.Sprintf("%.2f", line.Rate), "", 0, "R", fill, 0, "")
		pdf.CellFormat(amountW, 7, fmt.Sprintf("%.2f", line.Amount), "", 1, "R", fill, 0, "")
	}

	pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
	pdf.Line(20, pdf.GetY(), pageWidth-20, pdf.GetY())
	pdf.SetY(pdf.GetY() + 4)
}

func (g *Generator) writeTotals(pdf *fpdf.Fpdf, data *QuoteData) {
	pageWidth, _ := pdf.GetPageSize()
	labelW := pageWidth - 40 - 35 - 20
	valueW := 35.0

	cur := data.Quote.Currency
	row := func(label, value string, bold bool) {
		font := ""
		if bold {
			font = "B"
		}
		pdf.SetFont("Arial", font, 10)
		pdf.SetX(40)
		pdf.CellFormat(labelW, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 7, value, "", 1, "R", false, 0, "")
	}

	row("Subtotal", fmt.Sprintf("%s %.2f", cur, data.Quote.Subtotal), false)
	row("VAT", fmt.Sprintf("%s %.2f", cur, data.Quote.VATAmount), false)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	row("Total", fmt.Sprintf("%s %.2f", cur, data.Quote.Total), true)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
}

func (g *Generator) writeFooter(pdf *fpdf.Fpdf, data *QuoteData) {
	pdf.SetY(-40)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, "This quote is valid for 30 days from the date of issue.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%s - %s", data.Company.Name, data.Company.Email), "", 1, "C", false, 0, "")
}
