package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/futig/spec-copilot/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(spec *entity.FinalSpec) ([]byte, error) {
	sd := buildDocument(spec)

	doc := document.New()
	defer doc.Close()

	addStyled(doc, "Title", sd.title)

	for _, m := range sd.meta {
		par := doc.AddParagraph()
		label := par.AddRun()
		label.Properties().SetBold(true)
		label.AddText(m[0] + ": ")
		par.AddRun().AddText(m[1])
	}

	for _, s := range sd.sections {
		addStyled(doc, "Heading1", s.heading)
		for _, line := range s.lines {
			doc.AddParagraph().AddRun().AddText(line)
		}
	}

	if len(sd.trace) > 0 {
		addStyled(doc, "Heading1", "Reasoning Trace")
		for _, line := range sd.trace {
			doc.AddParagraph().AddRun().AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addStyled(doc *document.Document, style, text string) {
	par := doc.AddParagraph()
	par.SetStyle(style)
	par.AddRun().AddText(text)
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
