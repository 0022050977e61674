// Package github fetches style packs from GitHub repositories.
package github

import (
	"os"
	"os/exec"
	"strings"

	"github.com/HartBrook/keyfit/internal/errors"
)

// EnvGitHubToken is the environment variable for fallback token auth.
const EnvGitHubToken = "KEYFIT_GITHUB_TOKEN"

// GetToken resolves a GitHub token: `gh auth token` first, then
// KEYFIT_GITHUB_TOKEN.
func GetToken() (string, error) {
	if token, err := GetTokenFromGHCLI(); err == nil && token != "" {
		return token, nil
	}
	if token := GetTokenFromEnv(); token != "" {
		return token, nil
	}
	return "", errors.ProviderAuthFailed("GitHub", EnvGitHubToken)
}

// GetTokenFromGHCLI executes `gh auth token` to get token.
func GetTokenFromGHCLI() (string, error) {
	output, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// GetTokenFromEnv reads KEYFIT_GITHUB_TOKEN.
func GetTokenFromEnv() string {
	return os.Getenv(EnvGitHubToken)
}

// AuthMethod returns a string describing the current auth method.
func AuthMethod() string {
	if _, err := GetTokenFromGHCLI(); err == nil {
		return "gh CLI"
	}
	if GetTokenFromEnv() != "" {
		return EnvGitHubToken
	}
	return "none"
}
