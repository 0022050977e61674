package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/config"
)

func TestBuildInitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := buildInitConfig(&initOptions{})
		require.NoError(t, err)
		assert.Equal(t, config.DefaultProvider, cfg.Provider.Name)
		assert.Equal(t, config.DefaultProgressBackend, cfg.Progress.Backend)
		assert.Empty(t, cfg.Style.Source)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("answers are normalized", func(t *testing.T) {
		cfg, err := buildInitConfig(&initOptions{
			provider: " OpenAI ",
			model:    "gpt-4o-mini",
			style:    "https://github.com/acme/keyfit-style-ko",
			progress: "Badger",
		})
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Provider.Name)
		assert.Equal(t, "gpt-4o-mini", cfg.Provider.Model)
		assert.Equal(t, "acme/keyfit-style-ko", cfg.Style.Source)
		assert.Equal(t, "badger", cfg.Progress.Backend)
	})

	t.Run("invalid style repo", func(t *testing.T) {
		_, err := buildInitConfig(&initOptions{style: "not a repo"})
		assert.Error(t, err)
	})

	t.Run("starter excludes style source", func(t *testing.T) {
		_, err := buildInitConfig(&initOptions{style: "acme/style", starter: "korean-blog"})
		assert.Error(t, err)
	})

	t.Run("unknown provider fails validation", func(t *testing.T) {
		cfg, err := buildInitConfig(&initOptions{provider: "gemini"})
		require.NoError(t, err)
		assert.Error(t, cfg.Validate())
	})
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := NewInitCmd()
	for _, name := range []string{"provider", "model", "style", "progress", "starter", "yes"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}
	assert.Contains(t, cmd.Flags().Lookup("starter").Usage, "korean-blog")
}
