package config

import (
	"time"

	"go-stock-newsroom/pkg/config"
)

// Scheduler holds the stage scheduler configuration.
type Scheduler struct {
	PollingInterval string `mapstructure:"polling_interval"`
}

// Runner holds stage runner configuration.
type Runner struct {
	StageTimeout  time.Duration `mapstructure:"stage_timeout"`
	StageLockTTL  time.Duration `mapstructure:"stage_lock_ttl"`
	StreamTimeout time.Duration `mapstructure:"stream_timeout"`
}

// Freshness holds the snapshot reuse windows.
type Freshness struct {
	FinancialWindow time.Duration `mapstructure:"financial_window"`
	SentimentWindow time.Duration `mapstructure:"sentiment_window"`
}

// Retention holds the cleanup retention windows.
type Retention struct {
	SnapshotMaxAge time.Duration `mapstructure:"snapshot_max_age"`
}

// Quote holds the configuration for the quote provider.
type Quote struct {
	BaseURL             string        `mapstructure:"base_url"`
	Token               string        `mapstructure:"token"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// News holds the configuration for the news provider.
type News struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxResults       int           `mapstructure:"max_results"`
	MaxAgeInDays     int           `mapstructure:"max_age_in_days"`
	FetchFullContent bool          `mapstructure:"fetch_full_content"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Runner    Runner          `mapstructure:"runner"`
	Freshness Freshness       `mapstructure:"freshness"`
	Retention Retention       `mapstructure:"retention"`
	Quote     Quote           `mapstructure:"quote"`
	News      News            `mapstructure:"news"`
	Gemini    Gemini          `mapstructure:"gemini"`
	AI        AI              `mapstructure:"ai"`
	Telegram  config.Telegram `mapstructure:"telegram"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
