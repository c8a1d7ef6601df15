package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/jlink-updater/internal/logger"
)

// Config holds the settings of a single updater run.
type Config struct {
	// PageURL is the vendor download page listing every release.
	PageURL string `yaml:"page_url"`
	// DownloadURL is the base URL artifacts are requested from.
	// Empty means PageURL.
	DownloadURL string `yaml:"download_url"`
	// DownloadDir is where the artifact is saved. Empty means the working directory.
	DownloadDir string `yaml:"download_dir"`
	// Timeout bounds every HTTP request. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout"`
	// PreferredFormat overrides the package format detected from the host
	// package manager ("deb", "rpm" or "tgz").
	PreferredFormat string `yaml:"preferred_format"`
	// LogLevel is the minimum level of printed status lines.
	LogLevel string `yaml:"log_level"`
	// ChunkSize is the size in bytes of each block copied while downloading.
	// Zero means the downloader default.
	ChunkSize int `yaml:"chunk_size"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "jlink-updater-settings.yaml"

	// DefaultPageURL is SEGGER's J-Link download page.
	DefaultPageURL = "https://www.segger.com/downloads/jlink/"

	// DefaultFilePermissions is the permission used when saving settings.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned for a timeout below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errNegativeChunkSize is returned for a chunk size below zero.
	errNegativeChunkSize = errors.New("chunk size must not be negative")
	// errUnknownFormat is returned for an unsupported preferred format.
	errUnknownFormat = errors.New("unknown package format")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		PageURL:  DefaultPageURL,
		LogLevel: "info",
	}
}

// Load reads configuration from path and validates it.
// A missing file at the default location is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg := Default()

			return cfg, Validate(cfg)
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for empty fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PageURL == "" {
		cfg.PageURL = DefaultPageURL
	}

	if _, err := url.ParseRequestURI(cfg.PageURL); err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	if cfg.DownloadURL != "" {
		if _, err := url.ParseRequestURI(cfg.DownloadURL); err != nil {
			return fmt.Errorf("invalid download URL: %w", err)
		}
	}

	if cfg.Timeout < 0 {
		return errNegativeTimeout
	}

	if cfg.ChunkSize < 0 {
		return errNegativeChunkSize
	}

	cfg.PreferredFormat = strings.ToLower(strings.TrimSpace(cfg.PreferredFormat))
	switch cfg.PreferredFormat {
	case "", "deb", "rpm", "tgz":
	default:
		return fmt.Errorf("%w: %s", errUnknownFormat, cfg.PreferredFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}

// ArtifactBaseURL returns the URL artifacts are resolved against.
func (c *Config) ArtifactBaseURL() string {
	if c.DownloadURL != "" {
		return c.DownloadURL
	}

	return c.PageURL
}
