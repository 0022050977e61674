// Package substitute asks the text-generation service for replacement words
// for overused terms and caches the answers.
package substitute

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/logging"
	"github.com/HartBrook/keyfit/internal/terms"
)

// MaxSubstitutes caps how many replacements are kept per term.
const MaxSubstitutes = 10

const temperature = 0.7

var (
	koreanPronouns  = []string{"이것", "이", "해당 항목", "이 주제", "그것"}
	englishPronouns = []string{"it", "this", "this topic"}
)

// Generator produces substitution lists. It is safe for concurrent use;
// concurrent requests for the same term share one call.
type Generator struct {
	gen      llm.Generator
	fallback forced.Pool
	logger   *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[string][]string
}

// New creates a Generator. fallback answers whenever generation fails.
func New(gen llm.Generator, fallback forced.Pool, logger *zap.Logger) *Generator {
	if fallback == nil {
		fallback = forced.DefaultPool()
	}
	return &Generator{
		gen:      gen,
		fallback: fallback,
		logger:   logging.OrNop(logger),
		cache:    make(map[string][]string),
	}
}

// For returns replacements for term in the context of keyword. Generated
// lists always include a few deictic pronouns; on any failure the fallback
// pool's list is returned. Generated lists are cached per keyword and term;
// fallbacks are not, so a later call retries the service.
func (g *Generator) For(ctx context.Context, keyword, term string) []string {
	key := keyword + ":" + term

	g.mu.Lock()
	if cached, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return cached
	}
	g.mu.Unlock()

	v, _, _ := g.group.Do(key, func() (any, error) {
		subs, generated := g.generate(ctx, keyword, term)
		if generated {
			g.mu.Lock()
			g.cache[key] = subs
			g.mu.Unlock()
		}
		return subs, nil
	})
	return v.([]string)
}

// Resolve builds a pool for every term, falling back per term.
func (g *Generator) Resolve(ctx context.Context, keyword string, termTexts []string) forced.StaticPool {
	pool := forced.StaticPool{ByTerm: make(map[string][]string, len(termTexts))}
	for _, t := range termTexts {
		if ctx.Err() != nil {
			break
		}
		pool.ByTerm[t] = g.For(ctx, keyword, t)
	}
	return pool
}

// generate reports whether the list came from the service.
func (g *Generator) generate(ctx context.Context, keyword, term string) ([]string, bool) {
	if g.gen == nil {
		return g.fallback.Substitutes(term), false
	}
	korean := terms.Dominant(term) == terms.ScriptHangul

	out, err := g.gen.Generate(ctx, llm.Prompt{
		User:        buildPrompt(keyword, term, korean),
		Temperature: temperature,
		MaxTokens:   1024,
	})
	if err != nil {
		g.logger.Warn("substitution generation failed, using defaults", zap.String("term", term), zap.Error(err))
		return g.fallback.Substitutes(term), false
	}

	subs := Parse(out, term)
	if len(subs) == 0 {
		g.logger.Debug("no substitutions parsed, using defaults", zap.String("term", term))
		return g.fallback.Substitutes(term), false
	}

	pronouns := englishPronouns
	if korean {
		pronouns = koreanPronouns
	}
	if !slices.ContainsFunc(subs, func(s string) bool { return slices.Contains(pronouns, s) }) {
		subs = append(subs, pronouns[:3]...)
	}
	return subs, true
}

func buildPrompt(keyword, term string, korean bool) string {
	if korean {
		return fmt.Sprintf(`다음 단어의 동의어, 유사어, 대체 표현을 %d개 제시해 주세요:

단어: %s
키워드 컨텍스트: %s

이 단어는 블로그 글에서 자주 반복되어 대체어가 필요합니다. 대체어는 문맥상 자연스럽게 사용될 수 있는 표현이어야 합니다.
- 직접적인 동의어/유사어
- 특정 맥락에서 대체 가능한 단어
- 지시어(이것, 이, 해당 등)

JSON 형식으로 반환해주세요: ["대체어1", "대체어2", ...]`, MaxSubstitutes, term, keyword)
	}
	return fmt.Sprintf(`List %d synonyms, near-synonyms or replacement expressions for the word below.

Word: %s
Keyword context: %s

The word is repeated too often in a blog post. Replacements must read naturally in its place.
- direct synonyms
- words that can replace it in this context
- references such as "this" or "it"

Return a JSON array: ["replacement1", "replacement2", ...]`, MaxSubstitutes, term, keyword)
}
