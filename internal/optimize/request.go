package optimize

import (
	"github.com/go-playground/validator/v10"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/rewrite"
	"github.com/HartBrook/keyfit/internal/terms"
)

var validate = validator.New()

// Stage names a step of the optimization state machine.
type Stage string

const (
	StageAnalyze    Stage = "analyze"
	StageRewrite    Stage = "llm_rewrite"
	StageForcedChar Stage = "forced_char"
	StageForcedTerm Stage = "forced_term"
	StageLimitSweep Stage = "limit_sweep"
	StageDone       Stage = "done"
)

// Reporter receives progress events from a run. snap may be nil.
type Reporter interface {
	Report(stage Stage, message string, snap *analysis.Snapshot)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(stage Stage, message string, snap *analysis.Snapshot)

// Report implements Reporter.
func (f ReporterFunc) Report(stage Stage, message string, snap *analysis.Snapshot) {
	f(stage, message, snap)
}

// Request is one optimization job.
type Request struct {
	Draft     string         `validate:"required"`
	Keyword   string         `validate:"required"`
	CharRange analysis.Range `validate:"-"`
	TermRange analysis.Range `validate:"-"`
	// MaxAttempts bounds LLM rewrite rounds; zero skips the rewrite stage.
	MaxAttempts int      `validate:"gte=0,lte=10"`
	Morphemes   []string `validate:"dive,required"`

	Deterministic bool // skip the rewrite stage
	Force         bool // ignore a cached result
	NoCache       bool // neither read nor write the result cache

	Progress Reporter `validate:"-"`
}

// Validate rejects requests that cannot be run.
func (r Request) Validate() error {
	var reasons []string
	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				reasons = append(reasons, fe.Namespace()+" failed "+fe.Tag())
			}
		} else {
			reasons = append(reasons, err.Error())
		}
	}
	if err := r.CharRange.Validate(); err != nil {
		reasons = append(reasons, "char range: "+err.Error())
	}
	if err := r.TermRange.Validate(); err != nil {
		reasons = append(reasons, "term range: "+err.Error())
	}
	if r.Keyword != "" && terms.CleanKeyword(r.Keyword) == "" {
		reasons = append(reasons, "keyword has no usable characters")
	}
	if len(reasons) > 0 {
		return errors.InvalidRequest(reasons)
	}
	return nil
}

// Result is the outcome of a run. Text always holds the best-known text with
// its references section re-attached.
type Result struct {
	Text     string            `json:"text"`
	Snapshot analysis.Snapshot `json:"snapshot"`
	Origin   analysis.Origin   `json:"origin"`
	// Satisfied is set when both constraints hold. Infeasible is its negation,
	// reported as a flag rather than an error.
	Satisfied  bool `json:"satisfied"`
	Infeasible bool `json:"infeasible"`

	Terms       []terms.Tracked     `json:"terms"`
	Initial     analysis.Snapshot   `json:"initial"`
	Rounds      []rewrite.Round     `json:"rounds,omitempty"`
	Aborted     string              `json:"aborted,omitempty"`
	CharReports []forced.CharReport `json:"char_reports,omitempty"`
	TermReports []forced.TermReport `json:"term_reports,omitempty"`
	Sweep       []forced.TermReport `json:"sweep,omitempty"`
	Preprocess  PreprocessStats     `json:"preprocess"`
	FromCache   bool                `json:"from_cache"`
	Seed        uint64              `json:"seed"`
}
