// Package config loads service settings from the environment, after an
// optional .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port              string        `env:"PORT,               default=8000"`
	Env               string        `env:"ENV,                default=development"`
	LogLevel          string        `env:"LOG_LEVEL,          default=info"`
	LogPretty         bool          `env:"LOG_PRETTY,         default=false"`
	APIPrefix         string        `env:"API_PREFIX,         default=/api"`
	CORSOrigins       []string      `env:"CORS_ORIGINS,       default=*"`
	StoreBackend      string        `env:"STORE_BACKEND,      default=mongo"`
	HeartbeatSchedule string        `env:"HEARTBEAT_SCHEDULE"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,   default=15s"`

	Mongo  MongoConfig
	Auth   AuthConfig
	Redis  RedisConfig
	AMQP   AMQPConfig
	SMTP   SMTPConfig
	Notify NotifyConfig
}

type MongoConfig struct {
	URL      string        `env:"MONGO_URL"`
	Database string        `env:"DB_NAME"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type AuthConfig struct {
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL, default=8h"`
}

// RedisConfig is optional; an empty Addr disables idempotency replays.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// AMQPConfig is optional; an empty URL disables the lead.created publisher.
type AMQPConfig struct {
	URL        string `env:"AMQP_URL"`
	Exchange   string `env:"AMQP_EXCHANGE,    default=leads.events"`
	RoutingKey string `env:"AMQP_ROUTING_KEY, default=lead.created"`
}

// SMTPConfig is optional; e-mail notifications need Host and at least one
// recipient in NotifyConfig.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@localhost"`
}

type NotifyConfig struct {
	To      []string `env:"LEAD_NOTIFY_TO"`
	Workers int      `env:"NOTIFY_WORKERS, default=4"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.Notify.To = trimAll(cfg.Notify.To)
	cfg.APIPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = ""
	}
	// Log shippers in production expect one JSON object per line.
	if cfg.IsProduction() {
		cfg.LogPretty = false
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.Mongo.URL == "" || c.Mongo.Database == "" {
			return errors.New("MONGO_URL and DB_NAME are required when STORE_BACKEND=mongo")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", c.StoreBackend, BackendMongo, BackendMemory)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) RedisEnabled() bool { return c.Redis.Addr != "" }

func (c *Config) AMQPEnabled() bool { return c.AMQP.URL != "" }

func (c *Config) SMTPEnabled() bool { return c.SMTP.Host != "" && len(c.Notify.To) > 0 }

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
