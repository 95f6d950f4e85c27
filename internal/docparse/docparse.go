// Package docparse extracts plain text from uploaded documents. The format is
// chosen strictly by file extension; content sniffing is never attempted.
package docparse

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/apperr"
	"github.com/hyperifyio/localhelper/internal/charset"
)

// MaxTextRunes caps the text returned for a single document.
const MaxTextRunes = 50000

// Result is the parse-doc success payload.
type Result struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// TextExtractor pulls plain text out of one binary document format.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Parser dispatches documents to format extractors. A nil extractor means the
// capability is unavailable and requests for it fail with
// apperr.EDEPENDENCY.
type Parser struct {
	PDF  TextExtractor
	DOCX TextExtractor
	// Reasons explain why a capability is missing, keyed by extension.
	Reasons map[string]string
	Logger  zerolog.Logger
}

// New builds a Parser from capabilities decided at startup.
func New(caps Capabilities, logger zerolog.Logger) *Parser {
	p := &Parser{Reasons: map[string]string{}, Logger: logger}
	if caps.PDF.Available {
		p.PDF = PDFExtractor{}
	} else {
		p.Reasons[".pdf"] = caps.PDF.Reason
	}
	if caps.DOCX.Available {
		p.DOCX = DOCXExtractor{}
	} else {
		p.Reasons[".docx"] = caps.DOCX.Reason
	}
	return p
}

// Parse extracts text from data according to filename's extension.
func (p *Parser) Parse(filename string, data []byte) (Result, error) {
	name := CleanFilename(filename)
	ext := strings.ToLower(filepath.Ext(name))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text = strings.TrimSpace(charset.Decode(data))
	case ".pdf":
		text, err = p.extract(ext, p.PDF, data)
	case ".docx":
		text, err = p.extract(ext, p.DOCX, data)
	case ".doc":
		err = apperr.Errorf(apperr.EUNSUPPORTED, "unsupported, convert to .docx")
	default:
		err = apperr.Errorf(apperr.EUNSUPPORTED, "unsupported format, only .txt / .pdf / .docx")
	}
	if err != nil {
		return Result{}, err
	}
	text = truncate(text, MaxTextRunes)
	p.Logger.Debug().
		Str("filename", name).
		Int("bytes", len(data)).
		Int("text_runes", utf8.RuneCountInString(text)).
		Msg("document parsed")
	return Result{Text: text, Filename: name}, nil
}

func (p *Parser) extract(ext string, ex TextExtractor, data []byte) (string, error) {
	if ex == nil {
		reason := p.Reasons[ext]
		if reason == "" {
			reason = "not installed"
		}
		return "", apperr.Errorf(apperr.EDEPENDENCY, "%s extraction unavailable: %s", strings.TrimPrefix(ext, "."), reason)
	}
	text, err := ex.ExtractText(data)
	if err != nil {
		if apperr.Code(err) == apperr.EINTERNAL {
			return "", apperr.Wrap(apperr.EEXTRACT, err, "extract "+strings.TrimPrefix(ext, "."))
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// CleanFilename replaces whitespace with underscores and substitutes a
// default for an empty name.
func CleanFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return "document"
	}
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
