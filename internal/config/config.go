// Package config loads swfleet settings from defaults, an optional config
// file and SWFLEET_* environment variables using viper.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SobhanAbedi/swfleet/pkg/client"
	"github.com/SobhanAbedi/swfleet/pkg/ids"
	"github.com/SobhanAbedi/swfleet/pkg/logging"
	"github.com/SobhanAbedi/swfleet/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SWFLEET_BASE_URL.
const EnvPrefix = "SWFLEET"

// Config is the resolved application configuration.
type Config struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	PageSize    int
	MaxAttempts int
	Listen      string
	Films       []int

	Redis RedisConfig
	Cache CacheConfig
	Log   LogConfig
}

// RedisConfig enables the response cache and shared quota state when Addr is
// set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig tunes the response cache.
type CacheConfig struct {
	DefaultTTL time.Duration
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string
	Pretty bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", client.DefaultBaseURL)
	v.SetDefault("user_agent", "swfleet/0.1.0")
	v.SetDefault("timeout", "30s")
	v.SetDefault("page_size", 10)
	v.SetDefault("max_attempts", 1)
	v.SetDefault("listen", ":8080")
	v.SetDefault("films", []int{4, 5, 6, 1, 2, 3})
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.default_ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// NewViper returns a viper instance with defaults and environment overrides.
// A non-empty configFile is read and must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return v, nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	films, err := intSlice(v, "films")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:     v.GetString("base_url"),
		UserAgent:   v.GetString("user_agent"),
		Timeout:     v.GetDuration("timeout"),
		PageSize:    v.GetInt("page_size"),
		MaxAttempts: v.GetInt("max_attempts"),
		Listen:      v.GetString("listen"),
		Films:       films,
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			DefaultTTL: v.GetDuration("cache.default_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// intSlice reads a list of ints given either as a list or as a
// comma-separated string, which is how environment variables arrive.
func intSlice(v *viper.Viper, key string) ([]int, error) {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetIntSlice(key), nil
	}

	var out []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, field)
		}
		out = append(out, n)
	}
	return out, nil
}

// Validate checks the configuration for values the packages would reject.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https (got %q)", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host (got %q)", c.BaseURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", c.Timeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive (got %d)", c.PageSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", c.MaxAttempts)
	}
	if len(c.Films) == 0 {
		return fmt.Errorf("films must not be empty")
	}
	for _, id := range c.Films {
		if _, err := ids.ValidateFilmID(id); err != nil {
			return fmt.Errorf("films: %w", err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// CacheEnabled reports whether a Redis address is configured.
func (c Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// RedisOptions returns connection options for the configured Redis.
func (c Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// ClientConfig builds the API client configuration. rdb may be nil.
func (c Config) ClientConfig(rdb *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.BaseURL)
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.Timeout
	cfg.Redis = rdb
	cfg.CacheTTL = c.Cache.DefaultTTL
	cfg.Retry.MaxAttempts = c.MaxAttempts
	return cfg
}

// SessionConfig builds the session configuration.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		PageSize: c.PageSize,
		FilmIDs:  append([]int(nil), c.Films...),
	}
}

// LoggingConfig builds the logger configuration. Output defaults to stderr.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Pretty = c.Log.Pretty
	return cfg
}
