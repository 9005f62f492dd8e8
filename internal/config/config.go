package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the ingestion interval.
type ScheduleConfig struct {
	Interval string `yaml:"interval"`
}

// ParseInterval returns the ingestion interval as time.Duration.
func (s ScheduleConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// SourcesConfig holds configuration for all trend collectors.
type SourcesConfig struct {
	Search          SearchConfig         `yaml:"search"`
	CreativeCenter  CreativeCenterConfig `yaml:"creative_center"`
	RSS             RSSConfig            `yaml:"rss"`
	ExcludeKeywords []string             `yaml:"exclude_keywords"`
}

// SearchConfig for the search-suggest collector.
type SearchConfig struct {
	Enabled bool     `yaml:"enabled"`
	Seeds   []string `yaml:"seeds"`
	Region  string   `yaml:"region"`
}

// CreativeCenterConfig for the Creative Center leaderboard collector.
type CreativeCenterConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	CookiesFile string `yaml:"cookies_file"`
}

// RSSConfig for the RSS feed collector.
type RSSConfig struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// EnrichConfig configures the LLM summary service.
type EnrichConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./trends.db"},
		Schedule: ScheduleConfig{Interval: "30m"},
		Sources: SourcesConfig{
			Search: SearchConfig{
				Enabled: true,
				Seeds:   []string{"trending", "viral", "challenge", "meme", "fashion", "music"},
				Region:  "US",
			},
			CreativeCenter: CreativeCenterConfig{Enabled: false},
			RSS:            RSSConfig{Enabled: false},
		},
		Enrich: EnrichConfig{Model: "gpt-4o-mini"},
		Alerts: AlertsConfig{},
		Server: ServerConfig{
			Port:          8080,
			AllowedOrigin: "http://localhost:5173",
		},
	}
}

// Load reads configuration from a YAML file and applies env var
// overrides. A .env file in the working directory is loaded first, so
// secrets can live outside both the YAML and the shell profile.
func Load(path string) (*Config, error) {
	gotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIKTREND_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TIKTREND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TIKTREND_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Enrich.APIKey = v
		cfg.Enrich.Enabled = true
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
