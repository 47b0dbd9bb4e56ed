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

	// PollinationsAPIKey may be empty at startup; the relay then answers 500
	// until a key is provided.
	PollinationsAPIKey string
	PollinationsURL    string
	GenerateTimeout    time.Duration
	DefaultModel       string
	FallbackModels     []string

	OpenMeteoURL   string
	WeatherTimeout time.Duration

	RequestTimeout time.Duration
	CacheTTL       time.Duration
	CacheBackend   string // "in_memory" or "memcached"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	GalleryDBPath string

	WeatherPollInterval time.Duration
	RefreshInterval     time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Pollinations struct {
		URL            string   `yaml:"url"`
		Timeout        string   `yaml:"timeout"`
		DefaultModel   string   `yaml:"default_model"`
		FallbackModels []string `yaml:"fallback_models"`
	} `yaml:"pollinations"`

	Weather struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Gallery struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"gallery"`

	Timers struct {
		WeatherPollInterval string `yaml:"weather_poll_interval"`
		RefreshInterval     string `yaml:"refresh_interval"`
	} `yaml:"timers"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	PollinationsAPIKey string `yaml:"pollinations_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml, after sourcing a .env file when present. The provider
// key comes from POLLINATIONS_API_KEY env or the secrets file; a missing key
// is tolerated so the rest of the service can run. Call from project root.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
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

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.PollinationsAPIKey = os.Getenv("POLLINATIONS_API_KEY")
	if cfg.PollinationsAPIKey == "" {
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
			cfg.PollinationsAPIKey = sec.PollinationsAPIKey
		}
	}

	cfg.PollinationsURL = fc.Pollinations.URL
	if cfg.PollinationsURL == "" {
		cfg.PollinationsURL = "https://gen.pollinations.ai"
	}
	cfg.GenerateTimeout = parseDuration(fc.Pollinations.Timeout, 120*time.Second)
	cfg.DefaultModel = fc.Pollinations.DefaultModel
	cfg.FallbackModels = fc.Pollinations.FallbackModels

	cfg.OpenMeteoURL = fc.Weather.URL
	if cfg.OpenMeteoURL == "" {
		cfg.OpenMeteoURL = "https://api.open-meteo.com"
	}
	cfg.WeatherTimeout = parseDuration(fc.Weather.Timeout, 10*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 20*time.Minute)
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

	cfg.GalleryDBPath = os.Getenv("GALLERY_DB_PATH")
	if cfg.GalleryDBPath == "" {
		cfg.GalleryDBPath = fc.Gallery.DBPath
	}
	if cfg.GalleryDBPath == "" {
		cfg.GalleryDBPath = filepath.Join(cwd, "citypane.db")
	}

	cfg.WeatherPollInterval = parseDuration(fc.Timers.WeatherPollInterval, 15*time.Minute)
	cfg.RefreshInterval = parseDuration(fc.Timers.RefreshInterval, 30*time.Minute)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 10
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	if cfg.WeatherPollInterval > cfg.RefreshInterval {
		return fmt.Errorf("timers.weather_poll_interval (%s) must not exceed timers.refresh_interval (%s)",
			cfg.WeatherPollInterval, cfg.RefreshInterval)
	}
	return nil
}
