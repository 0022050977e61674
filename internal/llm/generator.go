// Package llm talks to text-generation services.
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/HartBrook/keyfit/internal/errors"
)

// Prompt is one request to a text-generation service.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	// MaxTokens caps the response; zero lets the client budget it from the prompt.
	MaxTokens int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// IsTransient reports whether err is worth retrying: overload and rate-limit
// responses, gateway errors and network timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errors.ErrGenerationTransient) {
		return true
	}
	if errors.Is(err, errors.ErrGenerationFatal) {
		return false
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") || strings.Contains(s, "rate limit") || strings.Contains(s, "overloaded")
}

func transientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // Anthropic "overloaded"
		return true
	}
	return false
}

// classify turns a provider error response into a transient or fatal error.
func classify(status int, errType, message string) error {
	msg := fmt.Sprintf("API returned status %d", status)
	if message != "" {
		msg = fmt.Sprintf("API error (%d): %s", status, message)
	}
	if transientStatus(status) || errType == "overloaded_error" || errType == "rate_limit_error" {
		return errors.GenerationTransient(msg, nil)
	}
	return errors.GenerationFatal(msg, nil)
}
