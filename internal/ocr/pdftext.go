package ocr

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Scanned PDFs expose either no text layer or a handful of stray glyphs;
// anything shorter than this goes through OCR instead.
const minTextLayerChars = 40

// pdfTextLayer extracts the PDF's embedded text layer, row by row so line
// structure survives. ok is false when the document has no usable layer and
// must be rasterized and recognized instead.
func pdfTextLayer(data []byte) (text string, ok bool) {
	// The reader panics on some malformed cross-reference tables; treat
	// those documents as having no text layer.
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	text = strings.TrimSpace(b.String())
	if len(text) < minTextLayerChars {
		return "", false
	}
	return text, true
}
