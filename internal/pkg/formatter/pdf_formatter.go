package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/futig/spec-copilot/internal/entity"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFontName = "DejaVuSans"

	// Checked in order: next to the binary, then from the repository root.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	for _, p := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(spec *entity.FinalSpec) ([]byte, error) {
	doc := buildDocument(spec)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts cannot render non-Latin text, prefer the bundled DejaVuSans.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 9, doc.title, "", "", false)
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()
	for _, m := range doc.meta {
		pdf.MultiCell(0, lineHeight*1.5, m[0]+": "+m[1], "", "", false)
	}

	for _, s := range doc.sections {
		pdf.Ln(3)
		pdf.SetFont(fontName, "B", 13)
		pdf.Cell(0, 8, s.heading)
		pdf.Ln(8)

		pdf.SetFont(fontName, "", 11)
		for _, line := range s.lines {
			pdf.MultiCell(0, lineHeight*1.5, line, "", "", false)
		}
	}

	if len(doc.trace) > 0 {
		pdf.Ln(3)
		pdf.SetFont(fontName, "B", 13)
		pdf.Cell(0, 8, "Reasoning Trace")
		pdf.Ln(8)

		pdf.SetFont(fontName, "", 9)
		for _, line := range doc.trace {
			pdf.MultiCell(0, lineHeight*1.3, line, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
