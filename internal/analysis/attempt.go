package analysis

// Origin records which stage produced a text.
type Origin string

const (
	OriginDraft  Origin = "draft"
	OriginLLM    Origin = "llm"
	OriginForced Origin = "forced"
	// OriginMixed is forced adjustment applied on top of an LLM rewrite.
	OriginMixed Origin = "mixed"
)

// Attempt is one candidate text with its snapshot.
type Attempt struct {
	Text     string   `json:"text"`
	Snapshot Snapshot `json:"snapshot"`
	Origin   Origin   `json:"origin"`
	Index    int      `json:"index"`
}

// Better reports whether a is strictly better than other. Any attempt beats nil.
func (a *Attempt) Better(other *Attempt) bool {
	if other == nil {
		return a != nil
	}
	if a == nil {
		return false
	}
	return IsBetter(a.Snapshot, other.Snapshot)
}
