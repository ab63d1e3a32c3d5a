package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Upstream   UpstreamConfig
	Session    SessionConfig
	PriceIndex PriceIndexConfig
	Cache      CacheConfig
	CallLog    CallLogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"catalog-proxy-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	AdminKey    string `envconfig:"ADMIN_API_KEY" default:""` // guards /api/v1/admin when set
}

// UpstreamConfig holds settings for the Roblox catalog API.
type UpstreamConfig struct {
	CatalogBaseURL string        `envconfig:"CATALOG_BASE_URL" default:"https://catalog.roblox.com"`
	Timeout        time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`

	// Transport-level retry for 5xx responses. When enabled it replaces
	// the one-shot auth retry on 401/403.
	RetryEnabled  bool          `envconfig:"UPSTREAM_RETRY_ENABLED" default:"false"`
	RetryAttempts int           `envconfig:"UPSTREAM_RETRY_ATTEMPTS" default:"3"`
	RetryBaseWait time.Duration `envconfig:"UPSTREAM_RETRY_BASE_WAIT" default:"500ms"`
}

// SessionConfig holds Roblox session credential settings.
type SessionConfig struct {
	Token      string `envconfig:"ROBLOSECURITY" default:""`
	CookieFile string `envconfig:"COOKIE_FILE" default:"./data/cookies.json"`

	// Legacy username/password login flow. Disabled by default; the
	// cookie-file/static-token resolution is the stable path.
	LoginEnabled bool   `envconfig:"SESSION_LOGIN_ENABLED" default:"false"`
	BotUsername  string `envconfig:"BOT_USERNAME" default:""`
	BotPassword  string `envconfig:"BOT_PASSWORD" default:""`
}

// PriceIndexConfig holds settings for the Rolimons price index.
type PriceIndexConfig struct {
	URL string        `envconfig:"PRICE_INDEX_URL" default:"https://api.rolimons.com/items/v1/itemdetails"`
	TTL time.Duration `envconfig:"PRICE_INDEX_TTL" default:"600s"`
}

// CacheConfig holds bundle-resolution cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CallLogConfig holds upstream call-log settings.
type CallLogConfig struct {
	Enabled         bool          `envconfig:"CALL_LOG_ENABLED" default:"true"`
	Path            string        `envconfig:"CALL_LOG_PATH" default:"./data/calllog.db"`
	Retention       time.Duration `envconfig:"CALL_LOG_RETENTION" default:"168h"`
	CleanupInterval time.Duration `envconfig:"CALL_LOG_CLEANUP_INTERVAL" default:"1h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
