package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderAuthFailed(t *testing.T) {
	err := ProviderAuthFailed("Anthropic", "ANTHROPIC_API_KEY")

	assert.Equal(t, ErrProviderAuthFailed, err.Code)
	assert.Contains(t, err.Error(), "Anthropic API authentication failed")
	assert.Contains(t, err.Hint, "ANTHROPIC_API_KEY")
}

func TestGenerationFatal(t *testing.T) {
	cause := errors.New("HTTP 401")
	err := GenerationFatal("bad credentials", cause)

	assert.Equal(t, ErrGenerationFatal, err.Code)
	assert.Contains(t, err.Error(), "text generation failed")
	assert.Contains(t, err.Error(), "bad credentials")
	assert.Contains(t, err.Hint, "--deterministic")

	unwrapped := err.Unwrap()
	require.NotNil(t, unwrapped)
	assert.Equal(t, cause, unwrapped)
}

func TestGenerationTransient_NilCause(t *testing.T) {
	err := GenerationTransient("overloaded", nil)

	assert.Equal(t, ErrGenerationTransient, err.Code)
	assert.Equal(t, "text generation temporarily unavailable: overloaded", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestInvalidRequest(t *testing.T) {
	err := InvalidRequest([]string{"char range min 2000 > max 1700", "keyword is empty"})

	assert.Equal(t, ErrInvalidRequest, err.Code)
	assert.Contains(t, err.Error(), "char range min 2000 > max 1700")
	assert.Contains(t, err.Error(), "keyword is empty")
}

func TestIs_ThroughWrapping(t *testing.T) {
	base := GenerationTransient("429", nil)
	wrapped := fmt.Errorf("round 2: %w", base)

	assert.True(t, Is(wrapped, ErrGenerationTransient))
	assert.False(t, Is(wrapped, ErrGenerationFatal))
	assert.False(t, Is(errors.New("plain"), ErrGenerationFatal))
	assert.False(t, Is(nil, ErrGenerationFatal))
}

func TestHintText(t *testing.T) {
	err := CacheNotFound("acme/style")
	assert.Contains(t, err.HintText(), "keyfit sync acme/style")
}
