package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override [sources].
const (
	EnvHTTPAPI = "LOGVIEW_HTTP_API"
	EnvWSSAPI  = "LOGVIEW_WSS_API"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides the endpoints from LOGVIEW_HTTP_API and LOGVIEW_WSS_API
// when they are set and non-empty.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvHTTPAPI); v != "" {
		c.Sources.HTTPURL = v
	}
	if v := os.Getenv(EnvWSSAPI); v != "" {
		c.Sources.WSURL = v
	}
}
