package substitute

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/llm"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		term    string
		want    []string
	}{
		{
			name:    "json array with prose",
			content: "Here you go:\n[\"노트북\", \"랩톱\", \"컴퓨터\"]\n",
			term:    "노트북",
			want:    []string{"랩톱", "컴퓨터"},
		},
		{
			name:    "bullet list",
			content: "- laptop: portable\n- notebook\n* computer",
			term:    "machine",
			want:    []string{"laptop", "notebook", "computer"},
		},
		{
			name:    "numbered list",
			content: "1. 제품\n2. 상품",
			term:    "물건",
			want:    []string{"제품", "상품"},
		},
		{
			name:    "comma separated",
			content: "device, gadget, Machine",
			term:    "machine",
			want:    []string{"device", "gadget"},
		},
		{
			name:    "quoted words",
			content: `try "device" or 'gadget'`,
			term:    "machine",
			want:    []string{"device", "gadget"},
		},
		{
			name:    "nothing usable",
			content: "sorry",
			term:    "machine",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content, tt.term))
		})
	}
}

func TestParse_CapsResults(t *testing.T) {
	got := Parse(`["a1","a2","a3","a4","a5","a6","a7","a8","a9","a10","a11","a12"]`, "x")
	assert.Len(t, got, MaxSubstitutes)
}

func TestFor_AddsPronouns(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		assert.Contains(t, p.User, "노트북")
		assert.InDelta(t, 0.7, p.Temperature, 1e-9)
		return `["랩톱", "컴퓨터"]`, nil
	})
	g := New(gen, nil, nil)

	got := g.For(context.Background(), "노트북 추천", "노트북")
	assert.Equal(t, []string{"랩톱", "컴퓨터", "이것", "이", "해당 항목"}, got)
}

func TestFor_KeepsExistingPronoun(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return `["랩톱", "그것"]`, nil
	})
	got := New(gen, nil, nil).For(context.Background(), "노트북", "노트북")
	assert.Equal(t, []string{"랩톱", "그것"}, got)
}

func TestFor_EnglishPrompt(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		assert.Contains(t, p.User, "Keyword context: laptop deals")
		return `["notebook"]`, nil
	})
	got := New(gen, nil, nil).For(context.Background(), "laptop deals", "laptop")
	assert.Equal(t, []string{"notebook", "it", "this", "this topic"}, got)
}

func TestFor_FallsBackOnError(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "", errors.New("boom")
	})
	got := New(gen, nil, nil).For(context.Background(), "노트북", "노트북")
	assert.Equal(t, forced.DefaultPool().KoreanNouns, got)
}

func TestFor_FallsBackOnUnparseable(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "no idea", nil
	})
	fallback := forced.StaticPool{EnglishGeneric: []string{"that"}}
	got := New(gen, fallback, nil).For(context.Background(), "laptop", "laptop")
	assert.Equal(t, []string{"that"}, got)
}

func TestFor_Caches(t *testing.T) {
	var calls atomic.Int32
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		calls.Add(1)
		return `["notebook"]`, nil
	})
	g := New(gen, nil, nil)

	first := g.For(context.Background(), "laptop", "laptop")
	second := g.For(context.Background(), "laptop", "laptop")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	g.For(context.Background(), "other keyword", "laptop")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFor_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("overloaded")
		}
		return `["notebook"]`, nil
	})
	g := New(gen, nil, nil)

	first := g.For(context.Background(), "laptop", "laptop")
	assert.Equal(t, forced.DefaultPool().EnglishGeneric, first)

	second := g.For(context.Background(), "laptop", "laptop")
	assert.Equal(t, []string{"notebook", "it", "this", "this topic"}, second)
	assert.Equal(t, int32(2), calls.Load())

	// Once generated, the list is served from the cache.
	g.For(context.Background(), "laptop", "laptop")
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolve(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return `["alt"]`, nil
	})
	pool := New(gen, nil, nil).Resolve(context.Background(), "laptop deals", []string{"laptop", "deals"})

	require.Len(t, pool.ByTerm, 2)
	assert.Equal(t, []string{"alt", "it", "this", "this topic"}, pool.Substitutes("deals"))
}

func TestNilGeneratorUsesFallback(t *testing.T) {
	got := New(nil, nil, nil).For(context.Background(), "laptop", "laptop")
	assert.Equal(t, forced.DefaultPool().EnglishGeneric, got)
}
