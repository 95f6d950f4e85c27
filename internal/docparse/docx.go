package docparse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/beevik/etree"

	"github.com/hyperifyio/localhelper/internal/apperr"
)

const docxBodyPart = "word/document.xml"

// DOCXExtractor reads paragraph text from word/document.xml.
type DOCXExtractor struct{}

// ExtractText returns the non-blank paragraphs joined by a blank line.
func (DOCXExtractor) ExtractText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.EEXTRACT, err, "open docx")
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", apperr.Errorf(apperr.EEXTRACT, "open docx: %s not found", docxBodyPart)
	}
	rc, err := part.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.EEXTRACT, err, "open docx body")
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return "", apperr.Wrap(apperr.EEXTRACT, err, "parse docx body")
	}

	var paras []string
	for _, p := range doc.FindElements("//w:p") {
		if inFallback(p) {
			continue
		}
		var b strings.Builder
		paragraphText(&b, p)
		if s := strings.TrimSpace(b.String()); s != "" {
			paras = append(paras, s)
		}
	}
	return strings.Join(paras, "\n\n"), nil
}

// paragraphText writes runs of p in document order. Nested paragraphs (text
// boxes) are skipped here because //w:p visits them on their own.
func paragraphText(b *strings.Builder, p *etree.Element) {
	for _, el := range p.ChildElements() {
		if el.Space != "w" {
			if !isFallback(el) {
				paragraphText(b, el)
			}
			continue
		}
		switch el.Tag {
		case "p":
			// text box content
		case "t":
			b.WriteString(el.Text())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		default:
			paragraphText(b, el)
		}
	}
}

// RenderDOCX builds a minimal .docx containing one paragraph per entry.
func RenderDOCX(paragraphs ...string) ([]byte, error) {
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, html.EscapeString(p))
	}
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{docxBodyPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() +
			`</w:body></w:document>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func probeDOCX() []byte {
	b, err := RenderDOCX("ok")
	if err != nil {
		return nil
	}
	return b
}

// isFallback reports whether el is the mc:Fallback branch of an
// mc:AlternateContent block, which repeats the mc:Choice content for older
// readers.
func isFallback(el *etree.Element) bool {
	return el.Space == "mc" && el.Tag == "Fallback"
}

func inFallback(el *etree.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if isFallback(p) {
			return true
		}
	}
	return false
}
