package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

// Text strips script and style blocks, replaces remaining tags with spaces,
// decodes entities and joins the visible words with single newlines. The
// result is capped at MaxContentRunes.
func Text(raw string) string {
	s := scriptRe.ReplaceAllString(raw, "")
	s = styleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	// Fields splits on unicode.IsSpace, which covers the NBSP that &nbsp;
	// decodes to.
	return truncate(strings.Join(strings.Fields(s), "\n"), MaxContentRunes)
}
