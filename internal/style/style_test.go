package style

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/forced"
)

const packYAML = `
name: acme blog
pool:
  terms:
    보조금: [지원금, 혜택]
  korean_nouns: [이 제도]
templates:
  english_expand:
    - "{noun} matters here."
synonyms:
  laptop: [notebook]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(packYAML))
	require.NoError(t, err)

	assert.Equal(t, "acme blog", p.Name)
	assert.Equal(t, []string{"지원금", "혜택"}, p.Pool.ByTerm["보조금"])
	assert.Equal(t, []string{"{noun} matters here."}, p.Templates.EnglishExpand)
	assert.Equal(t, []string{"notebook"}, p.Synonyms["laptop"])
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("pool: [unclosed"))
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestPoolOver(t *testing.T) {
	p, err := Parse([]byte(packYAML))
	require.NoError(t, err)

	pool := p.PoolOver(forced.DefaultPool())
	assert.Equal(t, []string{"지원금", "혜택"}, pool.Substitutes("보조금"))
	assert.Equal(t, []string{"이 제도"}, pool.Substitutes("전기차"))
	assert.Equal(t, forced.DefaultPool().EnglishGeneric, pool.Substitutes("laptop"))

	var none *Pack
	assert.Equal(t, forced.DefaultPool(), none.PoolOver(forced.DefaultPool()))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	paths := config.NewPathsWithOverrides(dir, dir)
	c := cache.New(paths)

	t.Run("nothing configured", func(t *testing.T) {
		p, err := Load(config.Default(), c)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("local path", func(t *testing.T) {
		path := filepath.Join(dir, "style.yaml")
		require.NoError(t, os.WriteFile(path, []byte(packYAML), 0644))

		cfg := config.Default()
		cfg.Style.Path = path
		p, err := Load(cfg, c)
		require.NoError(t, err)
		assert.Equal(t, "acme blog", p.Name)
	})

	t.Run("synced source", func(t *testing.T) {
		require.NoError(t, c.Write("acme", "style", packYAML, &cache.Metadata{}))

		cfg := config.Default()
		cfg.Style.Source = "acme/style"
		p, err := Load(cfg, c)
		require.NoError(t, err)
		assert.Equal(t, "acme blog", p.Name)
	})

	t.Run("source not synced", func(t *testing.T) {
		cfg := config.Default()
		cfg.Style.Source = "acme/missing"
		_, err := Load(cfg, c)
		assert.True(t, errors.Is(err, errors.ErrCacheNotFound))
	})
}
