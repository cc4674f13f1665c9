package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PolymarketConfig holds Polymarket API configuration
type PolymarketConfig struct {
	GammaAPIURL    string        `mapstructure:"gamma_api_url"`
	CheckInterval  time.Duration `mapstructure:"check_interval"`
	Limit          int           `mapstructure:"limit"`
	MaxPages       int           `mapstructure:"max_pages"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// DetectorConfig holds the live-detection gate thresholds and output bound
type DetectorConfig struct {
	MinVolume         float64 `mapstructure:"min_volume"`
	MinSpread         float64 `mapstructure:"min_spread"`
	MaxSpread         float64 `mapstructure:"max_spread"`
	MinVolumeDelta    float64 `mapstructure:"min_volume_delta"`
	MinPriceMove      float64 `mapstructure:"min_price_move"`
	PersistenceCycles int     `mapstructure:"persistence_cycles"`
	MaxAlertsPerCycle int     `mapstructure:"max_alerts_per_cycle"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken     string        `mapstructure:"bot_token"`
	ChatID       string        `mapstructure:"chat_id"`
	Enabled      bool          `mapstructure:"enabled"`
	SendDelay    time.Duration `mapstructure:"send_delay"`
	QueueSize    int           `mapstructure:"queue_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	ReferralCode string        `mapstructure:"referral_code"`
}

// StorageConfig holds snapshot-file and alert-journal persistence configuration
type StorageConfig struct {
	StateFile string `mapstructure:"state_file"`
	DBPath    string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// Enable environment variable override, e.g. SPREADBOT_TELEGRAM_BOT_TOKEN
	v.SetEnvPrefix("SPREADBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Polymarket defaults
	v.SetDefault("polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.check_interval", "180s")
	v.SetDefault("polymarket.limit", 500)
	v.SetDefault("polymarket.max_pages", 10)
	v.SetDefault("polymarket.timeout", "10s")
	v.SetDefault("polymarket.max_retries", 3)
	v.SetDefault("polymarket.retry_delay_base", "1s")

	// Detector defaults
	v.SetDefault("detector.min_volume", 100000.0)
	v.SetDefault("detector.min_spread", 0.05)
	v.SetDefault("detector.max_spread", 0.5)
	v.SetDefault("detector.min_volume_delta", 0.0)
	v.SetDefault("detector.min_price_move", 0.0)
	v.SetDefault("detector.persistence_cycles", 1)
	v.SetDefault("detector.max_alerts_per_cycle", 6)

	// Telegram defaults
	v.SetDefault("telegram.enabled", true)
	v.SetDefault("telegram.send_delay", "800ms")
	v.SetDefault("telegram.queue_size", 64)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.referral_code", "selenka")

	// Storage defaults
	v.SetDefault("storage.state_file", "./data/market_state.json")
	v.SetDefault("storage.db_path", "./data/alerts.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Polymarket.GammaAPIURL == "" {
		return fmt.Errorf("polymarket.gamma_api_url is required")
	}
	if c.Polymarket.CheckInterval < 10*time.Second {
		return fmt.Errorf("polymarket.check_interval must be at least 10 seconds")
	}
	if c.Polymarket.Limit < 1 || c.Polymarket.Limit > 1000 {
		return fmt.Errorf("polymarket.limit must be between 1 and 1000")
	}
	if c.Polymarket.MaxPages < 1 {
		return fmt.Errorf("polymarket.max_pages must be at least 1")
	}
	if c.Polymarket.Timeout < 1*time.Second {
		return fmt.Errorf("polymarket.timeout must be at least 1 second")
	}

	if c.Detector.MinVolume < 0 {
		return fmt.Errorf("detector.min_volume must not be negative")
	}
	if c.Detector.MinSpread < 0 || c.Detector.MinSpread > 1 {
		return fmt.Errorf("detector.min_spread must be between 0.0 and 1.0")
	}
	if c.Detector.MaxSpread < c.Detector.MinSpread {
		return fmt.Errorf("detector.max_spread must be >= detector.min_spread")
	}
	if c.Detector.PersistenceCycles < 1 {
		return fmt.Errorf("detector.persistence_cycles must be at least 1")
	}
	if c.Detector.MaxAlertsPerCycle < 1 {
		return fmt.Errorf("detector.max_alerts_per_cycle must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.SendDelay < 0 {
			return fmt.Errorf("telegram.send_delay must not be negative")
		}
		if c.Telegram.QueueSize < 1 {
			return fmt.Errorf("telegram.queue_size must be at least 1")
		}
	}

	if c.Storage.StateFile == "" {
		return fmt.Errorf("storage.state_file is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
