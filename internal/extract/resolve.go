package extract

// Resolve selects a single value from the candidates one field produced
// within one segment, or nil when there are none. Pure function.
//
// Policy: highest tier wins; same tier, the earliest mention in the segment
// wins (documents state authoritative values before incidental repeats);
// still tied, the longer value wins as the more complete one.
func Resolve(cands []Candidate) *string {
	if len(cands) == 0 {
		return nil
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best) {
			best = c
		}
	}
	v := best.Value
	return &v
}

func better(a, b Candidate) bool {
	if a.Tier != b.Tier {
		return a.Tier > b.Tier
	}
	if a.Pos != b.Pos {
		return a.Pos < b.Pos
	}
	return len(a.Value) > len(b.Value)
}
