// Package prompt builds rewrite instructions for the text-generation service.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/terms"
)

// Builder turns the current text and its snapshot into a prompt for one rewrite round.
type Builder interface {
	Build(text string, snap analysis.Snapshot, attempt int) llm.Prompt
}

const (
	DefaultBaseTemperature = 0.5
	DefaultTemperatureStep = 0.15
	DefaultMinTemperature  = 0.2
)

// Escalating gets stricter every round: round 0 gives general guidance,
// round 1 adds explicit per-term deltas, round 2 and later add hard output rules.
// Temperature drops each round.
type Escalating struct {
	Keyword string
	// Synonyms are offered to the model as replacements for overused terms.
	Synonyms map[string][]string

	BaseTemperature float64
	TemperatureStep float64
	MinTemperature  float64
}

// NewEscalating creates an Escalating builder with default temperatures.
func NewEscalating(keyword string, synonyms map[string][]string) *Escalating {
	return &Escalating{
		Keyword:         terms.CleanKeyword(keyword),
		Synonyms:        synonyms,
		BaseTemperature: DefaultBaseTemperature,
		TemperatureStep: DefaultTemperatureStep,
		MinTemperature:  DefaultMinTemperature,
	}
}

// Temperature returns the sampling temperature for a round.
func (e *Escalating) Temperature(attempt int) float64 {
	t := e.BaseTemperature - float64(attempt)*e.TemperatureStep
	t = math.Max(t, e.MinTemperature)
	return math.Round(t*100) / 100
}

// Build implements Builder.
func (e *Escalating) Build(text string, snap analysis.Snapshot, attempt int) llm.Prompt {
	l := english
	if terms.Dominant(e.Keyword+text) == terms.ScriptHangul {
		l = korean
	}

	var b strings.Builder
	fmt.Fprintf(&b, l.intro+"\n\n", e.Keyword)

	b.WriteString(l.goals + "\n")
	for _, tc := range snap.Terms {
		fmt.Fprintf(&b, l.goalTerm+"\n", tc.Term.Text, snap.TermRange.Min, snap.TermRange.Max)
	}
	fmt.Fprintf(&b, l.goalChars+"\n\n", snap.CharRange.Min, snap.CharRange.Max)

	b.WriteString(l.state + "\n")
	fmt.Fprintf(&b, l.stateChars+"\n", snap.CharCount)
	for _, tc := range snap.Terms {
		fmt.Fprintf(&b, l.stateTerm+"\n", tc.Term.Text, tc.Count)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, l.strategies+"\n\n", e.Keyword, e.Keyword, e.Keyword)

	if attempt >= 1 {
		e.writeDeltas(&b, l, snap)
	}
	if attempt >= 2 {
		b.WriteString(l.strict + "\n\n")
	}

	fmt.Fprintf(&b, "%s\n---\n%s\n---\n\n%s", l.textHeader, text, l.outro)

	return llm.Prompt{
		System:      l.system,
		User:        b.String(),
		Temperature: e.Temperature(attempt),
	}
}

func (e *Escalating) writeDeltas(b *strings.Builder, l language, snap analysis.Snapshot) {
	var lines []string
	for _, tc := range snap.Terms {
		d := snap.TermRange.Delta(tc.Count)
		switch {
		case d > 0:
			lines = append(lines, fmt.Sprintf(l.addTerm, d, tc.Term.Text))
		case d < 0:
			line := fmt.Sprintf(l.removeTerm, -d, tc.Term.Text)
			if syn := e.Synonyms[tc.Term.Text]; len(syn) > 0 {
				line += fmt.Sprintf(l.useSynonyms, strings.Join(syn, ", "))
			}
			lines = append(lines, line)
		}
	}
	switch d := snap.CharRange.Delta(snap.CharCount); {
	case d > 0:
		lines = append(lines, fmt.Sprintf(l.addChars, d))
	case d < 0:
		lines = append(lines, fmt.Sprintf(l.removeChars, -d))
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString(l.deltas + "\n")
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")
}
