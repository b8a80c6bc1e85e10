package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

var httpURLRe = regexp.MustCompile(`^https?://`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	Data      DataConfig        `yaml:"data" toml:"data"`
	Viewer    ViewerConfig      `yaml:"viewer" toml:"viewer"`
	Cache     CacheConfig       `yaml:"cache" toml:"cache"`
	Auth      AuthConfig        `yaml:"auth" toml:"auth"`
	Collector CollectorConfig   `yaml:"collector" toml:"collector"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Viewer.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Collector.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig locates the data root: a local directory (Root) or a remote
// data root (URL). URL takes precedence and disables watching.
type DataConfig struct {
	Root          string `yaml:"root" toml:"root"`
	URL           string `yaml:"url" toml:"url"`
	WithRelations bool   `yaml:"with_relations" toml:"with_relations"`
	Watch         bool   `yaml:"watch" toml:"watch"`
	DebounceMS    int    `yaml:"debounce_ms" toml:"debounce_ms"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	if c.URL != "" {
		c.Root = ""
		c.Watch = false
	}
	if c.Root == "" && c.URL == "" {
		return errors.New("data: one of root and url must be set")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Match(httpURLRe).Error("must be an http(s) URL")),
		validation.Field(&c.DebounceMS, validation.Min(0), validation.Max(60000)),
	)
}

// Debounce returns the watcher debounce window.
func (c *DataConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ViewerConfig holds dashboard settings.
type ViewerConfig struct {
	DefaultLimit     int      `yaml:"default_limit" toml:"default_limit"`
	CuratedNodes     []string `yaml:"curated_nodes" toml:"curated_nodes"`
	CuratedRelations []string `yaml:"curated_relations" toml:"curated_relations"`
	SpritesDir       string   `yaml:"sprites_dir" toml:"sprites_dir"`
	ReloadThrottleMS int      `yaml:"reload_throttle_ms" toml:"reload_throttle_ms"`
}

// Validate validates the viewer configuration.
func (c *ViewerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultLimit, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.ReloadThrottleMS, validation.Min(0)),
	)
}

// ReloadThrottle returns the minimum spacing of reload events.
func (c *ViewerConfig) ReloadThrottle() time.Duration {
	return time.Duration(c.ReloadThrottleMS) * time.Millisecond
}

// CacheConfig selects the stats cache backend.
type CacheConfig struct {
	Backend string      `yaml:"backend" toml:"backend"`
	Redis   RedisConfig `yaml:"redis" toml:"redis"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = CacheBackendMemory
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(CacheBackendMemory, CacheBackendRedis)),
	); err != nil {
		return err
	}
	if c.Backend == CacheBackendRedis {
		return c.Redis.Validate()
	}
	return nil
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	// TTLSeconds bounds the lifetime of entries left behind by old sessions.
	TTLSeconds int `yaml:"ttl_seconds" toml:"ttl_seconds"`
}

// TTL returns the expiry of cache entries; zero means none.
func (c *RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Validate validates the redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.TTLSeconds, validation.Min(0)),
	)
}

// CollectorConfig holds registry client settings of the collector commands.
type CollectorConfig struct {
	RegistryURL    string `yaml:"registry_url" toml:"registry_url"`
	Retries        int    `yaml:"retries" toml:"retries"`
	BackoffMS      int    `yaml:"backoff_ms" toml:"backoff_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Validate validates the collector configuration.
func (c *CollectorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RegistryURL, validation.Required, validation.Match(httpURLRe).Error("must be an http(s) URL")),
		validation.Field(&c.Retries, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&c.BackoffMS, validation.Min(0)),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): the API is open, suitable for local use.
//   - "token": Bearer token authentication on /api; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Root:          "./data",
			WithRelations: true,
			Watch:         true,
			DebounceMS:    300,
		},
		Viewer: ViewerConfig{
			DefaultLimit:     50,
			ReloadThrottleMS: 2000,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			Redis: RedisConfig{
				Addr:       "localhost:6379",
				TTLSeconds: 86400,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Collector: CollectorConfig{
			RegistryURL:    "https://metais.slovensko.sk",
			Retries:        5,
			BackoffMS:      1000,
			TimeoutSeconds: 30,
		},
	}
}
