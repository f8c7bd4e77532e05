package fetch

import (
	"regexp"
	"strings"
)

var (
	dropBlockRe = regexp.MustCompile(`(?is)<(script|style|nav|footer|noscript|svg)[^>]*>.*?</(?:script|style|nav|footer|noscript|svg)>`)
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)

	// Closing block elements and <br> become newlines so the segment
	// detector still sees line and paragraph boundaries. Headings and rows
	// are the repeating structures card listings use.
	paraBreakRe = regexp.MustCompile(`(?i)</(?:h[1-6]|tr|table|section|article|ul|ol)>`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|li|td|th)>`)

	tagRe     = regexp.MustCompile(`<[^>]+>`)
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	nlRunRe    = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// HTMLToText strips rendered HTML to plaintext while keeping block
// boundaries as newlines. Scripts, styles, nav, and footer chrome are
// removed entirely. The engine's normalizer finishes entity decoding for
// anything beyond the common named entities handled here.
func HTMLToText(html string) string {
	html = commentRe.ReplaceAllString(html, "")
	html = dropBlockRe.ReplaceAllString(html, "")

	html = paraBreakRe.ReplaceAllString(html, "\n\n")
	html = lineBreakRe.ReplaceAllString(html, "\n")

	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)

	html = spaceRunRe.ReplaceAllString(html, " ")
	html = nlRunRe.ReplaceAllString(html, "\n\n")

	// Trim per-line leftovers from tag stripping.
	lines := strings.Split(html, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// PageTitle pulls the <title> text from an HTML document, or "".
func PageTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(entityReplacer.Replace(m[1]))
	}
	return ""
}
