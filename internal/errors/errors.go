// Package errors provides typed errors for keyfit.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode identifies the type of error.
type ErrorCode string

const (
	ErrConfigNotFound      ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid       ErrorCode = "CONFIG_INVALID"
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrGenerationTransient ErrorCode = "GENERATION_TRANSIENT"
	ErrGenerationFatal     ErrorCode = "GENERATION_FATAL"
	ErrProviderAuthFailed  ErrorCode = "PROVIDER_AUTH_FAILED"
	ErrStyleFetchFailed    ErrorCode = "STYLE_FETCH_FAILED"
	ErrCacheNotFound       ErrorCode = "CACHE_NOT_FOUND"
	ErrRunNotFound         ErrorCode = "RUN_NOT_FOUND"
	ErrInvalidRepo         ErrorCode = "INVALID_REPO"
)

// KeyfitError represents a typed error with user-friendly hints.
type KeyfitError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
}

func (e *KeyfitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *KeyfitError) Unwrap() error {
	return e.Cause
}

// HintText returns the hint so the CLI can print it under the error.
func (e *KeyfitError) HintText() string {
	return e.Hint
}

// New creates a new KeyfitError.
func New(code ErrorCode, message, hint string) *KeyfitError {
	return &KeyfitError{
		Code:    code,
		Message: message,
		Hint:    hint,
	}
}

// Wrap creates a new KeyfitError wrapping an existing error.
func Wrap(code ErrorCode, message, hint string, cause error) *KeyfitError {
	return &KeyfitError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Cause:   cause,
	}
}

// Is reports whether err is a KeyfitError with the given code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if ke, ok := err.(*KeyfitError); ok && ke.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ConfigNotFound returns an error for missing config file.
func ConfigNotFound(path string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrConfigNotFound,
		Message: fmt.Sprintf("config file not found: %s", path),
		Hint:    "Run `keyfit config init` to write a default configuration",
	}
}

// ConfigInvalid returns an error for invalid config.
func ConfigInvalid(reason string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrConfigInvalid,
		Message: fmt.Sprintf("invalid config: %s", reason),
		Hint:    "Check your config file at ~/.config/keyfit/config.yaml",
	}
}

// InvalidRequest returns an error for a run rejected before any work started.
func InvalidRequest(reasons []string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrInvalidRequest,
		Message: fmt.Sprintf("invalid optimization request: %s", strings.Join(reasons, "; ")),
		Hint:    "Ranges need min <= max and the keyword must not be empty",
	}
}

// GenerationTransient returns an error for an overloaded or rate-limited provider.
func GenerationTransient(message string, cause error) *KeyfitError {
	return &KeyfitError{
		Code:    ErrGenerationTransient,
		Message: fmt.Sprintf("text generation temporarily unavailable: %s", message),
		Hint:    "The provider is overloaded; the request is retried automatically",
		Cause:   cause,
	}
}

// GenerationFatal returns an error for a non-retryable provider failure.
func GenerationFatal(message string, cause error) *KeyfitError {
	return &KeyfitError{
		Code:    ErrGenerationFatal,
		Message: fmt.Sprintf("text generation failed: %s", message),
		Hint:    "Use --deterministic to skip LLM rewrites and apply forced adjustment only",
		Cause:   cause,
	}
}

// ProviderAuthFailed returns an error when no API key is available.
func ProviderAuthFailed(provider, envVar string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrProviderAuthFailed,
		Message: fmt.Sprintf("%s API authentication failed", provider),
		Hint:    fmt.Sprintf("Set the %s environment variable", envVar),
	}
}

// StyleFetchFailed returns an error for style pack fetch failures.
func StyleFetchFailed(repo string, cause error) *KeyfitError {
	return &KeyfitError{
		Code:    ErrStyleFetchFailed,
		Message: fmt.Sprintf("failed to fetch style pack from %s", repo),
		Hint:    "Check that the repository exists and contains keyfit-style.yaml",
		Cause:   cause,
	}
}

// CacheNotFound returns an error when a cached style pack doesn't exist.
func CacheNotFound(repo string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrCacheNotFound,
		Message: fmt.Sprintf("no cached style pack for %s", repo),
		Hint:    "Run `keyfit sync " + repo + "` to fetch it",
	}
}

// RunNotFound returns an error for an unknown run id.
func RunNotFound(id string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrRunNotFound,
		Message: fmt.Sprintf("no progress recorded for run %s", id),
		Hint:    "Runs expire after the configured progress TTL",
	}
}

// InvalidRepo returns an error for malformed repo strings.
func InvalidRepo(repo string) *KeyfitError {
	return &KeyfitError{
		Code:    ErrInvalidRepo,
		Message: fmt.Sprintf("invalid repository format: %s", repo),
		Hint:    "Use format: github.com/owner/repo or owner/repo",
	}
}
