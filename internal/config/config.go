// SPDX-License-Identifier: MIT

// Package config loads kzrec settings from an optional YAML file and the
// environment. Environment variables always win over file values.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full daemon configuration.
type Config struct {
	// HTTP surface
	ListenAddr       string        `yaml:"listen_addr"`
	RefreshRateLimit int           `yaml:"refresh_rate_limit"` // requests per window per IP
	RefreshRateWin   time.Duration `yaml:"refresh_rate_window"`

	// Upstream Crossbar API
	KazooBaseURL string        `yaml:"kazoo_base_url"`
	AccountID    string        `yaml:"account_id"`
	AuthToken    string        `yaml:"auth_token"`
	PageSize     int           `yaml:"page_size"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	UpstreamRPS  float64       `yaml:"upstream_rps"` // page request pacing, 0 = unlimited

	// Pipeline
	WithCDRs      bool          `yaml:"with_cdrs"`
	DateOrder     string        `yaml:"date_order"` // mdy, dmy or ymd
	DefaultPreset string        `yaml:"default_preset"`
	SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
	ExportFile    string        `yaml:"export_file"` // optional CSV dump path

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the baseline configuration before file and environment
// overrides are applied.
func Defaults() Config {
	return Config{
		ListenAddr:       ":8080",
		RefreshRateLimit: 10,
		RefreshRateWin:   time.Minute,
		PageSize:         50,
		HTTPTimeout:      30 * time.Second,
		UpstreamRPS:      0,
		DateOrder:        "mdy",
		DefaultPreset:    "all",
		SnapshotTTL:      time.Minute,
		LogLevel:         "info",
	}
}

// FromEnv builds the configuration from defaults, an optional YAML file named
// by KZREC_CONFIG, and environment variables, in that order of precedence.
func FromEnv() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("KZREC_CONFIG"); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	cfg.ListenAddr = ParseString("KZREC_LISTEN", cfg.ListenAddr)
	cfg.RefreshRateLimit = ParseInt("KZREC_REFRESH_RATE_LIMIT", cfg.RefreshRateLimit)
	cfg.RefreshRateWin = ParseDuration("KZREC_REFRESH_RATE_WINDOW", cfg.RefreshRateWin)

	cfg.KazooBaseURL = ParseString("KZREC_KAZOO_URL", cfg.KazooBaseURL)
	cfg.AccountID = ParseString("KZREC_ACCOUNT_ID", cfg.AccountID)
	cfg.AuthToken = ParseString("KZREC_AUTH_TOKEN", cfg.AuthToken)
	cfg.PageSize = ParseInt("KZREC_PAGE_SIZE", cfg.PageSize)
	cfg.HTTPTimeout = ParseDuration("KZREC_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.UpstreamRPS = ParseFloat("KZREC_UPSTREAM_RPS", cfg.UpstreamRPS)

	cfg.WithCDRs = ParseBool("KZREC_WITH_CDRS", cfg.WithCDRs)
	cfg.DateOrder = ParseString("KZREC_DATE_ORDER", cfg.DateOrder)
	cfg.DefaultPreset = ParseString("KZREC_DEFAULT_PRESET", cfg.DefaultPreset)
	cfg.SnapshotTTL = ParseDuration("KZREC_SNAPSHOT_TTL", cfg.SnapshotTTL)
	cfg.ExportFile = ParseString("KZREC_EXPORT_FILE", cfg.ExportFile)

	cfg.LogLevel = ParseString("KZREC_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate reports all configuration problems at once.
func (c Config) Validate() error {
	var errs []error

	if c.KazooBaseURL == "" {
		errs = append(errs, errors.New("kazoo base URL is required (KZREC_KAZOO_URL)"))
	} else if _, err := url.ParseRequestURI(c.KazooBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("kazoo base URL invalid: %w", err))
	}
	if c.AccountID == "" {
		errs = append(errs, errors.New("account ID is required (KZREC_ACCOUNT_ID)"))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.PageSize))
	}
	switch c.DateOrder {
	case "mdy", "dmy", "ymd":
	default:
		errs = append(errs, fmt.Errorf("date order must be mdy, dmy or ymd, got %q", c.DateOrder))
	}
	if c.UpstreamRPS < 0 {
		errs = append(errs, errors.New("upstream RPS must not be negative"))
	}
	if c.SnapshotTTL < 0 {
		errs = append(errs, errors.New("snapshot TTL must not be negative"))
	}

	return errors.Join(errs...)
}
