package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Scraper  ScraperConfig
	Progress ProgressConfig
	Database DatabaseConfig
	API      APIConfig
	Logging  LoggingConfig
}

type ScraperConfig struct {
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestDelay   time.Duration
	UserAgent      string
	UseBrowser     bool
}

type ProgressConfig struct {
	Enabled   bool
	File      string
	RedisAddr string
	RedisTTL  time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type APIConfig struct {
	Enabled bool
	Addr    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Scraper: ScraperConfig{
			RequestTimeout: getDurationOrDefault("SCRAPER_REQUEST_TIMEOUT", 15*time.Second),
			MaxRetries:     getIntOrDefault("SCRAPER_MAX_RETRIES", 3),
			RetryDelay:     getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
			RequestDelay:   getDurationOrDefault("SCRAPER_REQUEST_DELAY", 2*time.Second),
			UserAgent:      getEnvOrDefault("SCRAPER_USER_AGENT", ""),
			UseBrowser:     getBoolOrDefault("SCRAPER_USE_BROWSER", false),
		},
		Progress: ProgressConfig{
			Enabled:   getBoolOrDefault("PROGRESS_ENABLED", true),
			File:      getEnvOrDefault("PROGRESS_FILE", "progress_checkpoint.json"),
			RedisAddr: getEnvOrDefault("PROGRESS_REDIS_ADDR", ""),
			RedisTTL:  getDurationOrDefault("PROGRESS_REDIS_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "medscraper"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		API: APIConfig{
			Enabled: getBoolOrDefault("API_ENABLED", false),
			Addr:    getEnvOrDefault("API_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must be at least 1")
	}
	if c.Scraper.RequestDelay < 0 {
		return fmt.Errorf("SCRAPER_REQUEST_DELAY cannot be negative")
	}
	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("SCRAPER_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// BatchFile describes one scraping batch: the URL list plus the knobs
// that vary per run. Loaded from TOML so batches are versionable files
// instead of edited source.
type BatchFile struct {
	URLs         []string `toml:"urls"`
	DelaySeconds float64  `toml:"delay_seconds"`
	SaveProgress bool     `toml:"save_progress"`
	Output       string   `toml:"output"`
}

func LoadBatchFile(path string) (*BatchFile, error) {
	bf := &BatchFile{
		SaveProgress: true,
		Output:       "medicines_scraped.csv",
	}
	if _, err := toml.DecodeFile(path, bf); err != nil {
		return nil, fmt.Errorf("decode batch file %s: %w", path, err)
	}
	if bf.DelaySeconds < 0 {
		return nil, fmt.Errorf("batch file %s: delay_seconds cannot be negative", path)
	}
	return bf, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
