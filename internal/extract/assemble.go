package extract

import "github.com/cardsift/cardsift/internal/model"

// Assemble combines resolved fields for a segment into one CardRecord. A
// segment without a resolvable card name yields nil: documents commonly
// contain boilerplate blocks that are not cards, and silently dropping them
// is the expected outcome, not an error.
//
// The returned record always carries every schema field; unresolved
// optional fields stay nil.
func Assemble(resolved map[model.FieldID]*string) *model.CardRecord {
	name := resolved[model.FieldCardName]
	if name == nil || *name == "" {
		return nil
	}
	return model.NewCardRecord(resolved)
}
