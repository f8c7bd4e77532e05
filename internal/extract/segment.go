package extract

import (
	"regexp"
	"strings"

	"github.com/cardsift/cardsift/internal/model"
)

// Segment is a contiguous span of normalized text hypothesized to describe
// exactly one card. Immutable once produced; Index records document order.
type Segment struct {
	Index int
	Start int // byte offset within the normalized text
	Text  string
	Kind  model.SourceKind
}

// span is a half-open byte range within the normalized text.
type span struct {
	start, end int
}

// heuristic proposes segment boundaries. Returns nil when it finds no
// recurring structure, letting the next heuristic (or the whole-document
// fallback) take over.
type heuristic struct {
	name  string
	split func(text string) []span
}

// Detector partitions normalized text into ordered card segments. The
// strategy is polymorphic on source kind: each kind carries its own
// priority-ordered heuristics. Shared and safe for concurrent use.
type Detector struct {
	rules  *RuleSet
	byKind map[model.SourceKind][]heuristic
}

// NewDetector builds a Detector that scores boundary hypotheses against the
// given rule set.
func NewDetector(rules *RuleSet) *Detector {
	return &Detector{
		rules: rules,
		byKind: map[model.SourceKind][]heuristic{
			model.SourcePDF: {
				{name: "anchor", split: anchorSplit},
				{name: "block", split: blockSplit},
			},
			model.SourceWeb: {
				{name: "heading", split: headingSplit},
				{name: "block", split: blockSplit},
			},
		},
	}
}

// Detect returns segments in document order. Heuristics are tried in the
// fixed priority order for the source kind; the winner is the one whose
// segmentation yields the most segments carrying at least one field match,
// with ties going to the earlier-listed heuristic. When nothing recurs the
// whole document becomes a single segment rather than failing.
func (d *Detector) Detect(text string, kind model.SourceKind) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	heuristics := d.byKind[kind]
	if heuristics == nil {
		heuristics = d.byKind[model.SourcePDF]
	}

	var best []span
	bestScore := 0
	for _, h := range heuristics {
		spans := h.split(text)
		if len(spans) == 0 {
			continue
		}
		score := d.score(text, spans)
		if score > bestScore {
			best, bestScore = spans, score
		}
	}

	if bestScore == 0 {
		best = []span{{0, len(text)}}
	}

	segs := make([]Segment, 0, len(best))
	for _, sp := range best {
		body := strings.TrimSpace(text[sp.start:sp.end])
		if body == "" {
			continue
		}
		segs = append(segs, Segment{
			Index: len(segs),
			Start: sp.start,
			Text:  body,
			Kind:  kind,
		})
	}
	return segs
}

// score counts segments that contain at least one non-name field match.
// Over-segmentation into empty shards scores low and loses.
func (d *Detector) score(text string, spans []span) int {
	n := 0
	for _, sp := range spans {
		if d.rules.HasFieldSignal(text[sp.start:sp.end]) {
			n++
		}
	}
	return n
}

// anchorRe matches a line that looks like a card name heading: a title-case
// phrase or an all-caps run ending in "Card". These recur once per product
// in PDF brochure text.
var anchorRe = regexp.MustCompile(`(?m)^[ ]*(?:` +
	`(?:[A-Z][\w&'’.-]*[ ]){1,6}[Cc]ard` + `|` +
	`[A-Z][A-Z0-9&' -]{2,60}CARD` +
	`)[ ]*$`)

// anchorSplit treats each card-name-looking line as the start of a segment;
// the span runs until the next anchor. Text before the first anchor is
// boilerplate and is excluded.
func anchorSplit(text string) []span {
	locs := anchorRe.FindAllStringIndex(text, -1)
	if len(locs) < 1 {
		return nil
	}
	spans := make([]span, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		spans = append(spans, span{loc[0], end})
	}
	return spans
}

// headingRe matches a short heading-like line mentioning a card. Rendered
// web pages repeat these per product block.
var headingRe = regexp.MustCompile(`(?im)^[ ]*[^\n]{0,70}\b(?:credit[ ]card|card)\b[^\n]{0,20}$`)

// headingSplit boundaries on recurring card headings in web text. Requires
// at least two headings; a single mention is no evidence of repetition.
func headingSplit(text string) []span {
	locs := headingRe.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}
	spans := make([]span, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		spans = append(spans, span{loc[0], end})
	}
	return spans
}

var blankLineRe = regexp.MustCompile(`\n[ ]*\n+`)

// blockSplit splits on blank lines, one block per paragraph. The lowest
// structural signal: it only wins when paragraph blocks actually carry
// field matches.
func blockSplit(text string) []span {
	seps := blankLineRe.FindAllStringIndex(text, -1)
	if len(seps) == 0 {
		return nil
	}
	spans := make([]span, 0, len(seps)+1)
	prev := 0
	for _, sep := range seps {
		if sep[0] > prev {
			spans = append(spans, span{prev, sep[0]})
		}
		prev = sep[1]
	}
	if prev < len(text) {
		spans = append(spans, span{prev, len(text)})
	}
	if len(spans) < 2 {
		return nil
	}
	return spans
}
