package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/hyperifyio/localhelper/internal/apperr"
)

type stubGetter struct {
	body  []byte
	ct    string
	err   error
	calls int
}

func (s *stubGetter) Get(_ context.Context, _ string) ([]byte, string, error) {
	s.calls++
	return s.body, s.ct, s.err
}

func TestFetchPage_BlankURLSkipsNetwork(t *testing.T) {
	g := &stubGetter{}
	p := NewPager(g, zerolog.Nop())
	for _, u := range []string{"", "   \t"} {
		_, err := p.FetchPage(context.Background(), u)
		if !apperr.Is(err, apperr.EINPUT) {
			t.Fatalf("url %q: expected input error, got %v", u, err)
		}
		if apperr.Message(err) != "missing url" {
			t.Fatalf("message=%q", apperr.Message(err))
		}
	}
	if g.calls != 0 {
		t.Fatalf("expected no outbound calls, got %d", g.calls)
	}
}

func TestFetchPage_ExtractsTitleAndContent(t *testing.T) {
	g := &stubGetter{
		body: []byte(`<html><head><title>Page</title><meta content="OG Page" property="og:title"></head>
			<body><script>track()</script><p>First</p><p>Second</p></body></html>`),
		ct: "text/html; charset=utf-8",
	}
	page, err := NewPager(g, zerolog.Nop()).FetchPage(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Title != "OG Page" {
		t.Fatalf("title=%q", page.Title)
	}
	if page.Content != "Page\nFirst\nSecond" {
		t.Fatalf("content=%q", page.Content)
	}
}

func TestFetchPage_GBKBody(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().String("<title>新闻标题</title><p>正文</p>")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// No charset in the header: the decoder falls back to GBK on invalid UTF-8.
	g := &stubGetter{body: []byte(raw), ct: "text/html"}
	page, err := NewPager(g, zerolog.Nop()).FetchPage(context.Background(), "http://x")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Title != "新闻标题" {
		t.Fatalf("title=%q", page.Title)
	}
	if !strings.Contains(page.Content, "正文") {
		t.Fatalf("content=%q", page.Content)
	}
}

func TestFetchPage_PropagatesNetworkError(t *testing.T) {
	g := &stubGetter{err: apperr.Wrap(apperr.ENETWORK, errors.New("dial"), "fetch page")}
	_, err := NewPager(g, zerolog.Nop()).FetchPage(context.Background(), "http://x")
	if !apperr.Is(err, apperr.ENETWORK) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchPage_TruncatesContentEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("字", 20000) + "</p></body></html>"))
	}))
	defer srv.Close()

	p := NewPager(&Client{}, zerolog.Nop())
	page, err := p.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n := utf8.RuneCountInString(page.Content); n != 15000 {
		t.Fatalf("content runes=%d, want 15000", n)
	}
}
