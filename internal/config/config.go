package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/kallan/internal/analytics"
	"github.com/joho/godotenv"
)

// Config holds the CLI's runtime settings.
type Config struct {
	DBPath    string
	RubricDir string
	LogLevel  slog.Level

	// Analytics lists the sink modes, e.g. "store" or "log,remote".
	Analytics        []string
	AnalyticsURL     string
	AnalyticsKey     string
	AnalyticsQueue   int
	AnalyticsTimeout time.Duration
}

// DefaultConfig returns a Config rooted at home. Analytics are kept in the
// local database only.
func DefaultConfig(home string) Config {
	return Config{
		DBPath:           filepath.Join(home, ".kallan", "kallan.db"),
		RubricDir:        filepath.Join(home, ".kallan", "rubrics"),
		LogLevel:         slog.LevelWarn,
		Analytics:        []string{analytics.ModeStore},
		AnalyticsQueue:   analytics.DefaultQueueSize,
		AnalyticsTimeout: analytics.DefaultRecordTimeout,
	}
}

// Load reads a .env file from the working directory when one exists and then
// applies environment overrides on top of DefaultConfig.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := DefaultConfig(home)

	if v := os.Getenv("KALLAN_DB"); v != "" {
		cfg.DBPath = v
	}

	// ./rubrics wins over the home directory during development.
	if v := os.Getenv("KALLAN_RUBRICS"); v != "" {
		cfg.RubricDir = v
	} else if stat, err := os.Stat("./rubrics"); err == nil && stat.IsDir() {
		cfg.RubricDir = "./rubrics"
	}

	if v := os.Getenv("KALLAN_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("KALLAN_LOG_LEVEL: %w", err)
		}
	}

	if v := os.Getenv("KALLAN_ANALYTICS"); v != "" {
		cfg.Analytics = splitList(v)
	}
	if v := os.Getenv("KALLAN_ANALYTICS_URL"); v != "" {
		cfg.AnalyticsURL = v
	}
	if v := os.Getenv("KALLAN_ANALYTICS_KEY"); v != "" {
		cfg.AnalyticsKey = v
	}
	if v := os.Getenv("KALLAN_ANALYTICS_QUEUE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalyticsQueue = n
		}
	}
	if v := os.Getenv("KALLAN_ANALYTICS_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalyticsTimeout = time.Duration(n) * time.Millisecond
		}
	}

	return cfg, nil
}

// HTTPConfig derives the remote sink settings.
func (c Config) HTTPConfig() analytics.HTTPConfig {
	hc := analytics.DefaultHTTPConfig()
	hc.BaseURL = c.AnalyticsURL
	hc.APIKey = c.AnalyticsKey
	return hc
}

// NewLogger returns a text logger on stderr at the configured level.
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
