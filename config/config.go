package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Email  EmailConfig
}

type ServerConfig struct {
	AppEnv         string   `env:"APP_ENV,default=development"`
	Port           string   `env:"PORT,default=4000"`
	APIPrefix      string   `env:"API_PREFIX,default=/api"`
	CORSOrigins    []string `env:"CORS_ORIGINS,default=*"`
	StoreDriver    string   `env:"STORE_DRIVER,default=mongo"`
	AuthRateLimit  float64  `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst  int      `env:"AUTH_RATE_BURST,default=10"`
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type LoggerConfig struct {
	Level string `env:"LOGGER_LEVEL,default=info"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,default=genz"`
	Transactions bool   `env:"MONGO_TRANSACTIONS,default=false"`
}

type RedisConfig struct {
	Host     string        `env:"REDIS_HOST,default=127.0.0.1"`
	Port     int           `env:"REDIS_PORT,default=6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,default=0"`
	Disabled bool          `env:"REDIS_DISABLED,default=false"`
	TTL      time.Duration `env:"CACHE_TTL,default=60s"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET,default=dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=168h"`
	DebugKey  string        `env:"DEBUG_KEY"`
}

type EmailConfig struct {
	Provider      string `env:"EMAIL_PROVIDER,default=none"`
	PostmarkToken string `env:"POSTMARK_API_TOKEN"`
	SendgridKey   string `env:"SENDGRID_API_KEY"`
	Sender        string `env:"EMAIL_SENDER,default=no-reply@genz-helmets.local"`
}

// Load decodes the configuration from the process environment
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.StoreDriver != "mongo" && c.Server.StoreDriver != "memory" {
		return fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", c.Server.StoreDriver)
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		c.Server.APIPrefix = "/" + c.Server.APIPrefix
	}
	c.Server.APIPrefix = strings.TrimSuffix(c.Server.APIPrefix, "/")
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(strings.TrimSpace(p)) {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
		}
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Server.AppEnv == "production" && c.Auth.JWTSecret == "dev-secret" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func validProxy(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}
