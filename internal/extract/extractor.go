package extract

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap heuristics without changing callers.
type Extractor interface {
	// Extract converts decoded page markup into a Document.
	// Implementations should be deterministic and avoid side effects.
	Extract(input string) Document
}

// HeuristicExtractor applies the default title matcher chain and the
// tag-stripping text extractor.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input string) Document {
	return FromHTML(input)
}

// ChainExtractor uses a custom title matcher order; Text is unchanged.
type ChainExtractor struct {
	Matchers []TitleMatcher
}

func (c ChainExtractor) Extract(input string) Document {
	matchers := c.Matchers
	if len(matchers) == 0 {
		matchers = DefaultTitleMatchers
	}
	title, _ := TitleWith(input, matchers)
	return Document{Title: title, Text: Text(input)}
}
