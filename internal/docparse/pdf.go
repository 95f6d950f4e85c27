package docparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"

	"github.com/hyperifyio/localhelper/internal/apperr"
)

// PDFExtractor reads the text layer of each page. Scanned pages without a
// text layer contribute nothing.
type PDFExtractor struct{}

// ExtractText joins non-empty page texts with a blank line.
func (PDFExtractor) ExtractText(data []byte) (text string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperr.Errorf(apperr.EEXTRACT, "malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.EEXTRACT, err, "open pdf")
	}
	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperr.Wrap(apperr.EEXTRACT, err, fmt.Sprintf("read pdf page %d", i))
		}
		if s = strings.TrimSpace(s); s != "" {
			pages = append(pages, s)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// RenderPDF writes a plain PDF with one page per entry in pages, using the
// Helvetica core font. It is used for the startup self-check.
func RenderPDF(pages ...string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, p := range pages {
		doc.AddPage()
		doc.Cell(40, 10, p)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func probePDF() []byte {
	b, err := RenderPDF("ok")
	if err != nil {
		return nil
	}
	return b
}
