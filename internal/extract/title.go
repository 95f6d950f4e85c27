package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// Page is the markup a TitleMatcher inspects. The goquery document is parsed
// at most once and only when a matcher asks for it.
type Page struct {
	Raw string

	doc    *goquery.Document
	parsed bool
}

// NewPage wraps decoded markup.
func NewPage(raw string) *Page { return &Page{Raw: raw} }

// Document returns the parsed DOM, or nil if the markup could not be parsed.
func (p *Page) Document() *goquery.Document {
	if !p.parsed {
		p.parsed = true
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Raw))
		if err == nil {
			p.doc = doc
		}
	}
	return p.doc
}

// TitleMatcher finds one kind of title marker. Match returns the raw
// candidate and whether the marker was present.
type TitleMatcher struct {
	Name  string
	Match func(p *Page) (string, bool)
}

// DefaultTitleMatchers is the priority order used by Title.
var DefaultTitleMatchers = []TitleMatcher{
	{Name: "msg_title", Match: matchMsgTitle},
	{Name: "og:title", Match: matchOpenGraphTitle},
	{Name: "js_title_inner", Match: matchArticleTitleSpan},
	{Name: "title", Match: matchDocumentTitle},
}

// Title returns the first non-empty normalised candidate produced by
// DefaultTitleMatchers, or "" when no marker matches.
func Title(raw string) string {
	title, _ := TitleWith(raw, DefaultTitleMatchers)
	return title
}

// TitleWith runs matchers in order and also reports which one won.
func TitleWith(raw string, matchers []TitleMatcher) (title string, matcher string) {
	p := NewPage(raw)
	for _, m := range matchers {
		candidate, ok := m.Match(p)
		if !ok {
			continue
		}
		if t := normalizeTitle(candidate); t != "" {
			return t, m.Name
		}
	}
	return "", ""
}

// Publishing platforms that render the article client-side keep the real
// title in a script variable.
var msgTitleRe = regexp.MustCompile(`(?i)var\s+msg_title\s*=\s*["']([^"']+)["']`)

func matchMsgTitle(p *Page) (string, bool) {
	m := msgTitleRe.FindStringSubmatch(p.Raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// The opengraph tokenizer collects each meta tag's attributes into a map, so
// content-before-property and property-before-content both match.
func matchOpenGraphTitle(p *Page) (string, bool) {
	og := opengraph.NewOpenGraph()
	// ProcessHTML returns early at <body>; a tokenizer error mid-head still
	// leaves whatever was read before it.
	_ = og.ProcessHTML(strings.NewReader(p.Raw))
	if og.Title == "" {
		return "", false
	}
	return og.Title, true
}

func matchArticleTitleSpan(p *Page) (string, bool) {
	doc := p.Document()
	if doc == nil {
		return "", false
	}
	sel := doc.Find("span.js_title_inner").First()
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Text(), true
}

func matchDocumentTitle(p *Page) (string, bool) {
	doc := p.Document()
	if doc == nil {
		return "", false
	}
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Text(), true
}
