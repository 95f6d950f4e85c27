package charset

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode gbk: %v", err)
	}
	return b
}

func TestDecode_UTF8PassesThrough(t *testing.T) {
	if got := Decode([]byte("héllo 世界")); got != "héllo 世界" {
		t.Fatalf("got %q", got)
	}
}

func TestDecode_StripsBOM(t *testing.T) {
	if got := Decode([]byte("\xEF\xBB\xBFabc")); got != "abc" {
		t.Fatalf("got %q", got)
	}
}

// GBK-only bytes must decode instead of surfacing a decode error.
func TestDecode_FallsBackToGBK(t *testing.T) {
	raw := gbk(t, "中文标题")
	if got := Decode(raw); got != "中文标题" {
		t.Fatalf("got %q, want 中文标题", got)
	}
}

func TestDecode_NeverFails(t *testing.T) {
	got := Decode([]byte{0xFF, 'a', 0x81})
	if !strings.Contains(got, "a") {
		t.Fatalf("expected ascii to survive, got %q", got)
	}
	if !utf8ValidString(got) {
		t.Fatalf("result must be valid UTF-8: %q", got)
	}
}

func TestDecodeContentType(t *testing.T) {
	raw := gbk(t, "你好")
	cases := []struct {
		name string
		ct   string
	}{
		{"gbk", "text/html; charset=GBK"},
		{"gb2312", "text/html; charset=gb2312"},
		{"missing", "text/html"},
		{"unknown", "text/html; charset=x-nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeContentType(raw, tc.ct); got != "你好" {
				t.Fatalf("got %q", got)
			}
		})
	}
	if got := DecodeContentType([]byte("ok"), "text/html; charset=utf-8"); got != "ok" {
		t.Fatalf("utf-8 label: got %q", got)
	}
}

// A single-byte label on a UTF-8 body must not turn the text into mojibake.
func TestDecodeContentType_IgnoresNonGBKLabels(t *testing.T) {
	for _, ct := range []string{
		"text/html; charset=iso-8859-1",
		"text/html; charset=windows-1252",
		"text/html; charset=shift_jis",
	} {
		if got := DecodeContentType([]byte("你好"), ct); got != "你好" {
			t.Fatalf("%s: got %q, want 你好", ct, got)
		}
	}
	// GBK bytes under a latin-1 label still reach the GBK fallback.
	if got := DecodeContentType(gbk(t, "中文"), "text/html; charset=iso-8859-1"); got != "中文" {
		t.Fatalf("mislabelled gbk: got %q", got)
	}
}

func TestDecodeContentType_GB18030Label(t *testing.T) {
	raw, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("标题"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := DecodeContentType(raw, "text/html; charset=GB18030"); got != "标题" {
		t.Fatalf("got %q", got)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(`text/html; charset="GB18030"`); got != "gb18030" {
		t.Fatalf("got %q", got)
	}
	if got := Label(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func utf8ValidString(s string) bool {
	return strings.ToValidUTF8(s, "") == s
}
