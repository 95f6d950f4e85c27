package fetch

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/apperr"
	"github.com/hyperifyio/localhelper/internal/charset"
	"github.com/hyperifyio/localhelper/internal/extract"
)

// Page is the fetch-page result.
type Page struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Getter is the outbound half of a page fetch. *Client implements it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Pager fetches a URL and extracts its title and readable text.
type Pager struct {
	Getter    Getter
	Extractor extract.Extractor
	Logger    zerolog.Logger
}

// NewPager returns a Pager using the heuristic extractor.
func NewPager(g Getter, logger zerolog.Logger) *Pager {
	return &Pager{Getter: g, Extractor: extract.HeuristicExtractor{}, Logger: logger}
}

// FetchPage downloads rawURL and extracts a Page. A blank URL fails with
// apperr.EINPUT before any network activity.
func (p *Pager) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Page{}, apperr.Errorf(apperr.EINPUT, "missing url")
	}
	body, contentType, err := p.Getter.Get(ctx, rawURL)
	if err != nil {
		return Page{}, err
	}
	markup := charset.DecodeContentType(body, contentType)
	ex := p.Extractor
	if ex == nil {
		ex = extract.HeuristicExtractor{}
	}
	doc := ex.Extract(markup)
	p.Logger.Debug().
		Str("url", rawURL).
		Int("bytes", len(body)).
		Str("title", doc.Title).
		Int("content_runes", len([]rune(doc.Text))).
		Msg("page extracted")
	return Page{Title: doc.Title, Content: doc.Text}, nil
}
