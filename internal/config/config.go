// Package config loads process-wide settings from the environment.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Token variables, in order of precedence.
const (
	EnvToken         = "GITHUB_API_TOKEN"
	EnvTokenFallback = "GITHUB_TOKEN"
)

// ErrMissingToken is returned when no GitHub token is configured.
var ErrMissingToken = errors.Newf("%s (or %s) environment variable is not set", EnvToken, EnvTokenFallback)

// Config holds settings shared by every command.
type Config struct {
	Token string
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to load %s", f)
		}
	}

	token := os.Getenv(EnvToken)
	if token == "" {
		token = os.Getenv(EnvTokenFallback)
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Config{Token: token}, nil
}
