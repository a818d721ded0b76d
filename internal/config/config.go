// Package config parses logview.toml and the environment overrides for the
// two log endpoints.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/LISSConsulting/LISSTech.LogView/internal/feed"
)

// FileName is the config file looked up from the working directory upward.
const FileName = "logview.toml"

// DefaultAccentColor is the default TUI accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level logview.toml configuration.
type Config struct {
	Sources SourcesConfig `toml:"sources"`
	HTTP    HTTPConfig    `toml:"http"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// SourcesConfig holds the two endpoints. Either may be empty, in which case
// that ingestion path is not started.
type SourcesConfig struct {
	HTTPURL string `toml:"http_url"`
	WSURL   string `toml:"ws_url"`
}

// HTTPConfig controls how the streamed HTTP body is paced.
type HTTPConfig struct {
	ChunkSize int `toml:"chunk_size"` // bytes per decoded sub-slice
	PauseMS   int `toml:"pause_ms"`   // pause after each received block; 0 disables pacing
	ReadSize  int `toml:"read_size"`  // max bytes per body read
}

// Pause returns PauseMS as a duration.
func (h HTTPConfig) Pause() time.Duration {
	return time.Duration(h.PauseMS) * time.Millisecond
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
	LineHeight  int    `toml:"line_height"` // terminal rows per log line
}

// LogConfig controls the diagnostics file.
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Sources.HTTPURL != "" {
		if err := checkURL(c.Sources.HTTPURL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("sources.http_url %w", err))
		}
	}
	if c.Sources.WSURL != "" {
		if err := checkURL(c.Sources.WSURL, "ws", "wss"); err != nil {
			errs = append(errs, fmt.Errorf("sources.ws_url %w", err))
		}
	}

	if c.HTTP.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("http.chunk_size must be >= 1"))
	}
	if c.HTTP.PauseMS < 0 {
		errs = append(errs, fmt.Errorf("http.pause_ms must be >= 0 (0 = no pause)"))
	}
	if c.HTTP.ReadSize < 1 {
		errs = append(errs, fmt.Errorf("http.read_size must be >= 1"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#7D56F4\")"))
	}
	if c.TUI.LineHeight < 1 {
		errs = append(errs, fmt.Errorf("tui.line_height must be >= 1"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error"))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("log.max_size_mb, log.max_backups and log.max_age_days must be >= 0"))
	}

	return errors.Join(errs...)
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("must be a valid %s URL", strings.Join(schemes, " or "))
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("must be a valid %s URL", strings.Join(schemes, " or "))
}

// Defaults returns a Config with the built-in defaults.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			ChunkSize: feed.DefaultChunkSize,
			PauseMS:   int(feed.DefaultPause / time.Millisecond),
			ReadSize:  feed.DefaultReadSize,
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
			LineHeight:  1,
		},
		Log: LogConfig{
			Path:       filepath.Join(".logview", "diagnostics.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   false,
		},
	}
}

// Load reads logview.toml from the given path. If path is empty, it walks up
// from the current working directory looking for logview.toml and falls back
// to defaults when none exists. Returns an error if the file contains unknown
// keys (likely typos).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return &cfg, nil
		}
		path = found
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
	}

	return &cfg, nil
}

// findConfig walks up from the current directory looking for logview.toml.
// It returns "" when the filesystem root is reached without a match.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// InitFile writes a default logview.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists at %s", FileName, path)
	}

	content := `# logview.toml: LogView configuration
# LOGVIEW_HTTP_API and LOGVIEW_WSS_API (environment or .env) override [sources].

[sources]
http_url = ""  # streamed plain-text endpoint, e.g. "http://localhost:8080/logs"
ws_url = ""    # websocket endpoint, e.g. "ws://localhost:8080/logs/ws"

[http]
chunk_size = 30   # bytes decoded and appended at a time
pause_ms = 2000   # pause after each block read from the stream
read_size = 4096  # max bytes per read

[tui]
accent_color = "#7D56F4"  # hex color for header/accent elements
line_height = 1           # terminal rows per log line

[log]
path = ".logview/diagnostics.log"  # fetch/socket errors go here, never to the screen
level = "info"
max_size_mb = 10
max_backups = 3
max_age_days = 14
compress = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
