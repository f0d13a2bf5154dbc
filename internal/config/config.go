// Package config loads process configuration from an optional .env file, an
// optional YAML config file, and environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ozanyurtsever/forex-api/internal/forex"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBPath         string        `yaml:"dbPath"`
	Workers        int           `yaml:"workers"`
	Pairs          []string      `yaml:"pairs"`
	Periods        []string      `yaml:"periods"`
	ScrapeInterval time.Duration `yaml:"scrapeInterval"`
	DailyAt        string        `yaml:"dailyAt"` // HH:MM, local time
}

func defaults() Config {
	return Config{
		Port:           "8080",
		DBPath:         "forex.db",
		Workers:        5,
		Pairs:          []string{"GBPINR", "AEDINR"},
		Periods:        []string{"1W", "1M", "3M", "6M", "1Y"},
		ScrapeInterval: 5 * time.Minute,
		DailyAt:        "00:00",
	}
}

// Load builds the config. A missing .env or config file is not an error;
// malformed contents are.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if _, _, err := cfg.ParseSchedule(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.ParsePairs(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.ParsePeriods(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile reads a YAML config file, expanding ${VAR} references first.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)
	cfg.DailyAt = getEnv("DAILY_AT", cfg.DailyAt)

	if v := os.Getenv("PAIRS"); v != "" {
		cfg.Pairs = splitList(v)
	}
	if v := os.Getenv("PERIODS"); v != "" {
		cfg.Periods = splitList(v)
	}
	if v := os.Getenv("SCRAPE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ScrapeInterval = d
		}
	}
}

// ParsePairs resolves the configured pair symbols into domain pairs.
func (c Config) ParsePairs() ([]forex.Pair, error) {
	pairs := make([]forex.Pair, 0, len(c.Pairs))
	for _, s := range c.Pairs {
		p, err := forex.ParseSymbol(s)
		if err != nil {
			return nil, fmt.Errorf("config pair %q: %w", s, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// ParsePeriods resolves the configured period names.
func (c Config) ParsePeriods() ([]forex.Period, error) {
	periods := make([]forex.Period, 0, len(c.Periods))
	for _, s := range c.Periods {
		p, err := forex.ParsePeriod(s)
		if err != nil {
			return nil, fmt.Errorf("config period %q: %w", s, err)
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// ParseSchedule returns the scrape interval and the daily anchor as an
// offset from local midnight.
func (c Config) ParseSchedule() (interval, dailyAt time.Duration, err error) {
	anchor, err := time.Parse("15:04", c.DailyAt)
	if err != nil {
		return 0, 0, fmt.Errorf("config dailyAt %q: expected HH:MM", c.DailyAt)
	}
	dailyAt = time.Duration(anchor.Hour())*time.Hour + time.Duration(anchor.Minute())*time.Minute
	return c.ScrapeInterval, dailyAt, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
