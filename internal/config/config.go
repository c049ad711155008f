package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the [reddit] section.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

// Output formats understood by the exporter.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var (
	validSorts       = []string{"relevance", "hot", "top", "new", "comments"}
	validTimeFilters = []string{"all", "day", "hour", "month", "week", "year"}
	validFormats     = []string{FormatCSV, FormatJSON}
)

// Config holds all application configuration
type Config struct {
	Version  int            `toml:"version"`
	Reddit   RedditConfig   `toml:"reddit"`
	Scrape   ScrapeConfig   `toml:"scrape"`
	Output   OutputConfig   `toml:"output"`
	Schedule ScheduleConfig `toml:"schedule"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type RedditConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UserAgent    string `toml:"user_agent"`
}

type ScrapeConfig struct {
	Communities   []string `toml:"communities"`
	Queries       []string `toml:"queries"`
	PostLimit     int      `toml:"post_limit"`
	Sort          string   `toml:"sort"`
	TimeFilter    string   `toml:"time_filter"`
	FetchComments bool     `toml:"fetch_comments"`
	CommentLimit  int      `toml:"comment_limit"`
}

type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

type ScheduleConfig struct {
	IntervalHours int      `toml:"interval_hours"`
	DailyAt       []string `toml:"daily_at"`
	Timezone      string   `toml:"timezone"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Reddit: RedditConfig{
			UserAgent: "Default Agent",
		},
		Scrape: ScrapeConfig{
			Communities:   []string{},
			Queries:       []string{},
			PostLimit:     50,
			Sort:          "top",
			TimeFilter:    "all",
			FetchComments: true,
			CommentLimit:  10,
		},
		Output: OutputConfig{
			Formats: []string{FormatCSV, FormatJSON},
		},
		Schedule: ScheduleConfig{
			IntervalHours: 6,
			DailyAt:       []string{},
			Timezone:      "UTC",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Validate checks values that would otherwise only fail at scrape time
func (c *Config) Validate() error {
	if !slices.Contains(validSorts, c.Scrape.Sort) {
		return fmt.Errorf("scrape.sort must be one of %v, got %q", validSorts, c.Scrape.Sort)
	}
	if !slices.Contains(validTimeFilters, c.Scrape.TimeFilter) {
		return fmt.Errorf("scrape.time_filter must be one of %v, got %q", validTimeFilters, c.Scrape.TimeFilter)
	}
	if c.Scrape.PostLimit < 0 || c.Scrape.CommentLimit < 0 {
		return fmt.Errorf("scrape limits must not be negative")
	}
	for _, f := range c.Output.Formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("output.formats entries must be one of %v, got %q", validFormats, f)
		}
	}
	if c.Schedule.IntervalHours < 0 {
		return fmt.Errorf("schedule.interval_hours must not be negative")
	}
	return nil
}

// ApplyEnv overrides Reddit credentials from the environment, loading a .env
// file from the working directory first if one exists.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv(EnvClientID); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Reddit.UserAgent = v
	}
}

// OutputDir returns the configured output directory, defaulting to a
// directory under the cache dir.
func (c *Config) OutputDir() (string, error) {
	if c.Output.Dir != "" {
		return c.Output.Dir, nil
	}
	cacheDir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "runs"), nil
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "threadgraph"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "threadgraph"), nil
}

// Load reads config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. Keys missing from the file keep their
// default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
