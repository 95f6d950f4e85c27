// Package charset turns raw page and document bytes into UTF-8 text.
package charset

import (
	"bytes"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode interprets b as UTF-8 and falls back to GBK when b is not valid
// UTF-8. Bytes that neither encoding accepts become U+FFFD; Decode never
// fails.
func Decode(b []byte) string {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b)
	}
	if s, err := decodeWith(simplifiedchinese.GBK, b); err == nil {
		return s
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// DecodeContentType decodes b with the GBK family encoding named by the
// charset parameter of a Content-Type header. Every other label, including
// single-byte ones that servers often attach to UTF-8 pages, goes through
// Decode.
func DecodeContentType(b []byte, contentType string) string {
	label := Label(contentType)
	if label == "" {
		return Decode(b)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return Decode(b)
	}
	name, _ := htmlindex.Name(enc)
	if name != "gbk" && name != "gb18030" {
		return Decode(b)
	}
	if s, err := decodeWith(enc, bytes.TrimPrefix(b, utf8BOM)); err == nil {
		return s
	}
	return Decode(b)
}

// Label extracts the lower-cased charset parameter from a Content-Type value.
func Label(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

func decodeWith(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
