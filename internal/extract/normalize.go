package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/cardsift/cardsift/internal/model"
)

var (
	horizWSRe  = regexp.MustCompile(`[ \t]+`)
	multiNLRe  = regexp.MustCompile(`\n{3,}`)
	trailWSRe  = regexp.MustCompile(`[ \t]+\n`)
	controlRe  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	crOrVertRe = regexp.MustCompile(`\r\n?`)
)

// Normalize canonicalizes a raw document into the text the segment detector
// operates on. Horizontal whitespace runs collapse to a single space and
// three-or-more newlines collapse to a blank line, but line and paragraph
// boundaries survive: they are the segmentation signal. Currency and numeric
// tokens pass through untouched.
//
// Normalize is total: any input, including empty, produces output.
func Normalize(doc model.RawDocument) string {
	text := doc.Text
	if text == "" {
		return ""
	}

	text = crOrVertRe.ReplaceAllString(text, "\n")
	text = controlRe.ReplaceAllString(text, "")

	// Web text arrives with entities intact when the fetcher could not
	// decode them all; decode here so rules match literal characters.
	if doc.Kind == model.SourceWeb {
		text = html.UnescapeString(text)
	}

	text = horizWSRe.ReplaceAllString(text, " ")
	text = trailWSRe.ReplaceAllString(text, "\n")
	text = multiNLRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
