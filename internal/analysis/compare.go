package analysis

// IsBetter reports whether candidate is strictly closer to satisfying every
// constraint than baseline. Rules apply in order: full satisfaction, character
// distance to the band midpoint, number of valid terms, then total term
// distance to the band midpoint. Ties keep the baseline.
func IsBetter(candidate, baseline Snapshot) bool {
	cs, bs := candidate.Satisfied(), baseline.Satisfied()
	switch {
	case cs && !bs:
		return true
	case bs && !cs:
		return false
	}

	if cd, bd := candidate.CharDistance(), baseline.CharDistance(); cd != bd {
		return cd < bd
	}
	if cv, bv := candidate.ValidTerms(), baseline.ValidTerms(); cv != bv {
		return cv > bv
	}
	if ct, bt := candidate.TermDistance(), baseline.TermDistance(); ct != bt {
		return ct < bt
	}
	return false
}
