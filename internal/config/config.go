// Package config provides configuration helpers for recemotion commands.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/teslashibe/recemotion/pkg/facs"
	"github.com/teslashibe/recemotion/pkg/journal"
	"github.com/teslashibe/recemotion/pkg/session"
)

// DefaultServerURL is where the CLI looks for a running service.
const DefaultServerURL = "http://localhost:8080"

// Service holds the recemotiond settings.
type Service struct {
	Port     int    `env:"RECEMOTION_PORT"      envDefault:"8080"`
	Debug    bool   `env:"RECEMOTION_DEBUG"`
	LogLevel string `env:"RECEMOTION_LOG_LEVEL" envDefault:"info"`

	// Journal
	JournalPath     string `env:"RECEMOTION_JOURNAL_PATH"`
	JournalDisabled bool   `env:"RECEMOTION_JOURNAL_DISABLED"`

	// Session
	CalibrationSamples int     `env:"RECEMOTION_CALIBRATION_SAMPLES" envDefault:"30"`
	HistorySize        int     `env:"RECEMOTION_HISTORY_SIZE"        envDefault:"100"`
	Threshold          float64 `env:"RECEMOTION_THRESHOLD"           envDefault:"2.0"`
	MaxYawRatio        float64 `env:"RECEMOTION_MAX_YAW_RATIO"       envDefault:"0.25"`
	MinIPD             float64 `env:"RECEMOTION_MIN_IPD"             envDefault:"0.1"`
}

// Load parses the service configuration from the environment.
// An empty journal path resolves to ~/.recemotion/journal.json.
func Load() (Service, error) {
	var cfg Service
	if err := env.Parse(&cfg); err != nil {
		return Service{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JournalPath == "" && !cfg.JournalDisabled {
		path, err := journal.DefaultPath()
		if err != nil {
			return Service{}, err
		}
		cfg.JournalPath = path
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (s Service) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Session converts the settings into a session configuration.
// Unusable values fall back to defaults inside session.New.
func (s Service) Session() session.Config {
	return session.Config{
		CalibrationSamples: s.CalibrationSamples,
		Threshold:          s.Threshold,
		Gate: facs.GateConfig{
			MaxYawRatio: s.MaxYawRatio,
			MinIPD:      s.MinIPD,
		},
		HistorySize: s.HistorySize,
	}
}

// ServerURL returns the service URL from RECEMOTION_URL env var.
// Falls back to the provided default if not set.
func ServerURL(defaultURL string) string {
	if u := os.Getenv("RECEMOTION_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultURL
}

// WebSocketURL rewrites an http(s) service URL to its ws(s) form.
func WebSocketURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	}
	return serverURL
}
