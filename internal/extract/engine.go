// Package extract implements the card extraction engine: normalization,
// segmentation, rule-based field matching, candidate resolution, and record
// assembly. The engine is a pure function of (document, rule set): no I/O,
// no shared mutable state, no fatal error paths. Missing structure degrades
// to a single segment and missing fields degrade to nulls.
package extract

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cardsift/cardsift/internal/model"
)

// Engine runs the full extraction pipeline over one document at a time.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules    *RuleSet
	detector *Detector

	// workers bounds per-segment fan-out. Zero means sequential.
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers enables concurrent per-segment resolution with up to n
// goroutines. Segments have no cross-segment dependency, so this is purely
// a throughput knob; output order is unaffected.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithRules replaces the built-in rule set.
func WithRules(rs *RuleSet) Option {
	return func(e *Engine) {
		e.rules = rs
		e.detector = NewDetector(rs)
	}
}

// NewEngine creates an Engine with the built-in rules.
func NewEngine(opts ...Option) *Engine {
	rs := DefaultRuleSet()
	e := &Engine{rules: rs, detector: NewDetector(rs)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract converts a raw document into an ordered sequence of card records.
// Segments that never resolve a card name are dropped; a document with no
// valid segments yields an empty, non-error result. Output order equals the
// document order of the source segments, and identical input always yields
// identical output.
func (e *Engine) Extract(doc model.RawDocument) []model.CardRecord {
	text := Normalize(doc)
	segs := e.detector.Detect(text, doc.Kind)
	if len(segs) == 0 {
		return nil
	}

	type indexed struct {
		idx int
		rec *model.CardRecord
	}

	results := make([]indexed, 0, len(segs))
	if e.workers > 1 {
		out := make([]indexed, len(segs))
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, seg := range segs {
			g.Go(func() error {
				out[i] = indexed{idx: seg.Index, rec: e.extractSegment(seg)}
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
		results = out
	} else {
		for _, seg := range segs {
			results = append(results, indexed{idx: seg.Index, rec: e.extractSegment(seg)})
		}
	}

	// Re-sort by segment index so concurrent resolution cannot disturb
	// the document-order invariant.
	sort.Slice(results, func(i, j int) bool { return results[i].idx < results[j].idx })

	records := make([]model.CardRecord, 0, len(results))
	for _, r := range results {
		if r.rec != nil {
			records = append(records, *r.rec)
		}
	}
	return records
}

// extractSegment resolves every schema field for one segment and assembles
// the record, or nil when the segment is not a card.
func (e *Engine) extractSegment(seg Segment) *model.CardRecord {
	resolved := make(map[model.FieldID]*string, len(model.AllFields()))
	for _, f := range model.AllFields() {
		resolved[f] = Resolve(e.rules.Candidates(seg.Text, f))
	}
	return Assemble(resolved)
}
