package render

import (
	"bytes"
	"fmt"
	"strconv"

	"travel-drink-generator/internal/core/drink"

	"github.com/go-pdf/fpdf"
)

// Title PDF 標題
const Title = "Travel Drink Generator - Smart Picks"

var tableHeader = []string{"Kcal", "Carbs (g)", "ABV%", "Gluten-free", "Keto", "Caffeine", "Carbonation"}

const (
	pageMargin  = 15.0
	columnWidth = 26.0
	rowHeight   = 7.0
)

// PDF 將計畫輸出為 Letter 尺寸的 PDF
func PDF(plan *drink.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("render: nil plan")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(Title, false)
	pdf.SetCreator("travel-drink-generator", false)
	pdf.AddPage()

	// 核心字型只支援 cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, p := range plan.Picks {
		writePick(pdf, tr, i+1, p)
	}

	heading(pdf, tr, "Pacing plan")
	pdf.SetFont("Helvetica", "", 11)
	for _, step := range plan.Pacing {
		pdf.MultiCell(0, 6, tr("- "+step.Instruction), "", "L", false)
	}

	heading(pdf, tr, "Next-day recovery")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range plan.Recovery {
		pdf.MultiCell(0, 6, tr("- "+item), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
}

func writePick(pdf *fpdf.Fpdf, tr func(string) string, n int, p drink.Profile) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Pick %d: %s", n, p.Name)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(211, 211, 211)
	for _, h := range tableHeader {
		pdf.CellFormat(columnWidth, rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	row := []string{
		strconv.Itoa(p.Kcal),
		formatFloat(p.CarbsG),
		formatFloat(p.ABVPct),
		strconv.FormatBool(p.GlutenFree),
		strconv.FormatBool(p.Keto),
		strconv.FormatBool(p.Caffeine),
		strconv.FormatBool(p.Carbonation),
	}
	for _, v := range row {
		pdf.CellFormat(columnWidth, rowHeight, v, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, tr("Order: "+p.Order), "", "L", false)
	pdf.Ln(3)
}

// formatFloat 一位小數，整數值保留 .0
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
