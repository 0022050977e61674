package integration

import (
	"slices"
	"strings"
	"testing"

	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/progress"
	"github.com/HartBrook/keyfit/internal/terms"
)

// Asserter provides assertion helpers for optimization results.
type Asserter struct {
	t      *testing.T
	result *optimize.Result
	events []progress.Event
}

// NewAsserter creates an asserter for the given result and run events.
func NewAsserter(t *testing.T, result *optimize.Result, events []progress.Event) *Asserter {
	return &Asserter{t: t, result: result, events: events}
}

// Count returns the exact-match count of term in the final text.
func (a *Asserter) Count(term string) int {
	return terms.CountExact(term, a.result.Text)
}

// EndsWith reports whether the final text ends with block, ignoring
// surrounding whitespace.
func (a *Asserter) EndsWith(block string) bool {
	return strings.HasSuffix(strings.TrimSpace(a.result.Text), strings.TrimSpace(block))
}

// Stages returns the distinct reported stages in order of first appearance.
func (a *Asserter) Stages() []string {
	var out []string
	for _, ev := range a.events {
		if !slices.Contains(out, ev.Stage) {
			out = append(out, ev.Stage)
		}
	}
	return out
}

// RunAssertions runs all assertions from a fixture definition.
func (a *Asserter) RunAssertions(assertions FixtureAssertions) {
	a.t.Helper()
	res := a.result

	if assertions.Satisfied != nil && res.Satisfied != *assertions.Satisfied {
		a.t.Errorf("expected satisfied=%v, got %v (%s)", *assertions.Satisfied, res.Satisfied, res.Snapshot.Summary())
	}
	if res.Satisfied == res.Infeasible {
		a.t.Errorf("satisfied and infeasible must differ, both are %v", res.Satisfied)
	}

	if assertions.Origin != "" && string(res.Origin) != assertions.Origin {
		a.t.Errorf("expected origin %q, got %q", assertions.Origin, res.Origin)
	}

	for _, text := range assertions.Contains {
		if !strings.Contains(res.Text, text) {
			a.t.Errorf("expected text to contain %q, but not found", text)
		}
	}
	for _, text := range assertions.NotContains {
		if strings.Contains(res.Text, text) {
			a.t.Errorf("expected text NOT to contain %q, but found", text)
		}
	}

	if assertions.Prefix != "" && !strings.HasPrefix(res.Text, assertions.Prefix) {
		a.t.Errorf("expected text to start with %q", assertions.Prefix)
	}
	if assertions.References != "" && !a.EndsWith(assertions.References) {
		a.t.Errorf("expected references section to be preserved at the end of the text")
	}

	for term, n := range assertions.MinCounts {
		if got := a.Count(term); got < n {
			a.t.Errorf("expected at least %d of %q, got %d", n, term, got)
		}
	}
	for term, n := range assertions.MaxCounts {
		if got := a.Count(term); got > n {
			a.t.Errorf("expected at most %d of %q, got %d", n, term, got)
		}
	}

	stages := a.Stages()
	for _, stage := range assertions.Stages {
		if !slices.Contains(stages, stage) {
			a.t.Errorf("expected stage %q to be reported, got %v", stage, stages)
		}
	}
}
