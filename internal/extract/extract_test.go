package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTitle_OpenGraphBothAttributeOrders(t *testing.T) {
	cases := map[string]string{
		"property first": `<html><head>
			<meta property="og:title" content="  Shared
			Title  ">
			<title>Fallback</title></head><body></body></html>`,
		"content first": `<html><head>
			<meta content="  Shared
			Title  " property="og:title" />
			<title>Fallback</title></head><body></body></html>`,
	}
	for name, page := range cases {
		t.Run(name, func(t *testing.T) {
			got, by := TitleWith(page, DefaultTitleMatchers)
			if got != "Shared Title" {
				t.Fatalf("title=%q, want %q", got, "Shared Title")
			}
			if by != "og:title" {
				t.Fatalf("matched by %q, want og:title", by)
			}
		})
	}
}

func TestTitle_MsgTitleWinsOverAllOthers(t *testing.T) {
	page := `<html><head>
		<title>Doc Title</title>
		<meta property="og:title" content="OG Title">
		<script>var msg_title = "Platform  Title";</script>
		</head><body>
		<span class="rich_media_title js_title_inner">Span Title</span>
		</body></html>`
	if got := Title(page); got != "Platform Title" {
		t.Fatalf("title=%q, want %q", got, "Platform Title")
	}
}

func TestTitle_SpanBeforeDocumentTitle(t *testing.T) {
	page := `<html><head><title>Doc Title</title></head><body>
		<h1><span class="js_title_inner">
			Article   Heading
		</span></h1></body></html>`
	got, by := TitleWith(page, DefaultTitleMatchers)
	if got != "Article Heading" || by != "js_title_inner" {
		t.Fatalf("got %q via %q", got, by)
	}
}

func TestTitle_DocumentTitleFallback(t *testing.T) {
	page := "<html><head><TITLE>\n  Plain \t Page\n</TITLE></head><body>x</body></html>"
	if got := Title(page); got != "Plain Page" {
		t.Fatalf("title=%q", got)
	}
}

func TestTitle_NoMarkersIsEmpty(t *testing.T) {
	if got := Title(`<html><body><h1>Heading only</h1></body></html>`); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
	if got := Title(""); got != "" {
		t.Fatalf("expected empty title for empty input, got %q", got)
	}
}

func TestTitle_BlankCandidateFallsThrough(t *testing.T) {
	page := `<html><head><title>Real</title></head><body><span class="js_title_inner">   </span></body></html>`
	if got := Title(page); got != "Real" {
		t.Fatalf("title=%q, want Real", got)
	}
}

func TestTitle_TruncatedTo500Runes(t *testing.T) {
	long := strings.Repeat("标", 800)
	got := Title("<title>" + long + "</title>")
	if n := utf8.RuneCountInString(got); n != MaxTitleRunes {
		t.Fatalf("rune count=%d, want %d", n, MaxTitleRunes)
	}
}

func TestTitleWith_CustomOrder(t *testing.T) {
	page := `<html><head><title>Doc</title><meta property="og:title" content="OG"></head><body></body></html>`
	reversed := []TitleMatcher{DefaultTitleMatchers[3], DefaultTitleMatchers[1]}
	if got, _ := TitleWith(page, reversed); got != "Doc" {
		t.Fatalf("title=%q, want Doc", got)
	}
	doc := ChainExtractor{Matchers: reversed}.Extract(page)
	if doc.Title != "Doc" {
		t.Fatalf("ChainExtractor title=%q", doc.Title)
	}
}

func TestText_JoinsWordsWithNewlines(t *testing.T) {
	got := Text(`<html><script>evil()</script><body>Hello &nbsp; World</body></html>`)
	if got != "Hello\nWorld" {
		t.Fatalf("text=%q, want %q", got, "Hello\nWorld")
	}
}

func TestText_MultilineCaseInsensitiveBlocks(t *testing.T) {
	page := `<HTML><HEAD><STYLE type="text/css">
		body { color: red; }
	</STYLE><Script type="text/javascript">
		var a = "<p>hidden</p>";
	</SCRIPT></HEAD><BODY><p>Visible</p><div>text</div></BODY></HTML>`
	got := Text(page)
	if got != "Visible\ntext" {
		t.Fatalf("text=%q", got)
	}
}

func TestText_EmptyAfterTrim(t *testing.T) {
	if got := Text("<div>   </div><script>x</script>"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestText_TruncatesVisibleText(t *testing.T) {
	page := "<html><body><p>" + strings.Repeat("a", 20000) + "</p></body></html>"
	got := Text(page)
	if n := utf8.RuneCountInString(got); n != MaxContentRunes {
		t.Fatalf("content length=%d, want %d", n, MaxContentRunes)
	}
}

func TestHeuristicExtractor(t *testing.T) {
	var e Extractor = HeuristicExtractor{}
	doc := e.Extract(`<html><head><title>T</title></head><body><p>one</p><p>two</p></body></html>`)
	if doc.Title != "T" {
		t.Fatalf("title=%q", doc.Title)
	}
	// <title> text is visible to the tag stripper as well.
	if doc.Text != "T\none\ntwo" {
		t.Fatalf("text=%q", doc.Text)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
