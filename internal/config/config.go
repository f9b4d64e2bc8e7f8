package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	DatabasePath string

	MarineAPIURL  string
	WeatherAPIURL string
	MeteoTimeout  time.Duration

	GeminiAPIKey  string
	GeminiAPIURL  string
	GeminiModel   string
	GeminiTimeout time.Duration

	RequestTimeout time.Duration

	CacheTTL         time.Duration
	NegativeCacheTTL time.Duration
	CacheBackend     string // "in_memory" or "memcached"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RateLimitPerMinute int
	RateLimitBurst     int

	CoalesceTimeout time.Duration

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	BreakNameMinLength int
	BreakNameMaxLength int

	WarmBreaks   []string
	WarmInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Meteo struct {
		MarineURL  string `yaml:"marine_url"`
		WeatherURL string `yaml:"weather_url"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"meteo"`

	Gemini struct {
		URL     string `yaml:"url"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"gemini"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend     string `yaml:"backend"`
		TTL         string `yaml:"ttl"`
		NegativeTTL string `yaml:"negative_ttl"`
		Memcached   struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	RateLimit struct {
		PerMinute int `yaml:"per_minute"`
		Burst     int `yaml:"burst"`
	} `yaml:"rate_limit"`

	Coalesce struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"coalesce"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Validation struct {
		BreakNameMinLength int `yaml:"break_name_min_length"`
		BreakNameMaxLength int `yaml:"break_name_max_length"`
	} `yaml:"validation"`

	Warming struct {
		Breaks   []string `yaml:"breaks"`
		Interval string   `yaml:"interval"`
	} `yaml:"warming"`
}

type secretsFile struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. A .env file in the working directory is loaded first
// when present. The Gemini API key comes from GEMINI_API_KEY env or the
// secrets file. Call from project root.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = os.Getenv("PORT")
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = fc.Database.Path
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join("data", "wavereader.db")
	}

	cfg.MarineAPIURL = fc.Meteo.MarineURL
	if cfg.MarineAPIURL == "" {
		cfg.MarineAPIURL = "https://marine-api.open-meteo.com/v1/marine"
	}
	cfg.WeatherAPIURL = fc.Meteo.WeatherURL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.open-meteo.com/v1/forecast"
	}
	cfg.MeteoTimeout = parseDuration(fc.Meteo.Timeout, 10*time.Second)

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.GeminiAPIKey = sec.GeminiAPIKey
		}
	}

	cfg.GeminiAPIURL = fc.Gemini.URL
	if cfg.GeminiAPIURL == "" {
		cfg.GeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	cfg.GeminiModel = fc.Gemini.Model
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemma-3-27b-it"
	}
	cfg.GeminiTimeout = parseDuration(fc.Gemini.Timeout, 30*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 45*time.Second)

	cfg.CacheTTL = parseDuration(fc.Cache.TTL, time.Hour)
	cfg.NegativeCacheTTL = parseDuration(fc.Cache.NegativeTTL, time.Minute)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.RateLimitPerMinute = fc.RateLimit.PerMinute
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 10
	}
	cfg.RateLimitBurst = fc.RateLimit.Burst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitPerMinute
	}

	cfg.CoalesceTimeout = parseDuration(fc.Coalesce.Timeout, 30*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.BreakNameMinLength = fc.Validation.BreakNameMinLength
	if cfg.BreakNameMinLength <= 0 {
		cfg.BreakNameMinLength = 2
	}
	cfg.BreakNameMaxLength = fc.Validation.BreakNameMaxLength
	if cfg.BreakNameMaxLength <= 0 {
		cfg.BreakNameMaxLength = 100
	}

	cfg.WarmBreaks = fc.Warming.Breaks
	cfg.WarmInterval = parseDurationOrZero(fc.Warming.Interval, 0)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values. The request
// timeout must cover both upstream environmental calls plus the generative
// call; it is raised when the configured value does not.
func validate(cfg *Config) error {
	if cfg.MeteoTimeout <= 0 {
		return fmt.Errorf("meteo.timeout must be positive")
	}
	minRequest := 2*cfg.MeteoTimeout + cfg.GeminiTimeout
	if cfg.RequestTimeout < minRequest {
		cfg.RequestTimeout = minRequest
	}
	if cfg.NegativeCacheTTL > cfg.CacheTTL {
		return fmt.Errorf("cache.negative_ttl (%s) must not exceed cache.ttl (%s)", cfg.NegativeCacheTTL, cfg.CacheTTL)
	}
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
