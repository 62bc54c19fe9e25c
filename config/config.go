package config

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	auth "github.com/nexotv/nexo-auth"
	"github.com/nexotv/nexo-auth/mailer"
)

// Config holds runtime configuration for the service.
type Config struct {
	AppAddr         string        `envconfig:"APP_ADDR" default:":3000"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	Debug           bool          `envconfig:"APP_DEBUG" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"file:nexo-auth.db?cache=shared"`

	SigningKey      string   `envconfig:"AUTH_SIGNING_KEY" required:"true"`
	TokenExpiration int      `envconfig:"AUTH_TOKEN_EXPIRATION" default:"4"`
	Issuer          string   `envconfig:"AUTH_ISSUER" default:"nexo-auth"`
	Audience        []string `envconfig:"AUTH_AUDIENCE" default:"nexo-tv"`
	ContextKey      string   `envconfig:"AUTH_CONTEXT_KEY" default:"user"`
	TokenLookup     string   `envconfig:"AUTH_TOKEN_LOOKUP" default:"header:Authorization"`
	AuthScheme      string   `envconfig:"AUTH_SCHEME" default:"Bearer"`
	HashidIDs       bool     `envconfig:"AUTH_HASHID_IDS" default:"false"`

	EmailService  string        `envconfig:"EMAIL_SERVICE" required:"true"`
	EmailUser     string        `envconfig:"EMAIL_USER" required:"true"`
	EmailPassword string        `envconfig:"EMAIL_PASSWORD" required:"true"`
	EmailFromName string        `envconfig:"EMAIL_FROM_NAME" default:"NEXO TV"`
	EmailAppName  string        `envconfig:"EMAIL_APP_NAME" default:"NexoTV"`
	EmailTimeout  time.Duration `envconfig:"EMAIL_TIMEOUT" default:"30s"`
	EmailQueue    bool          `envconfig:"EMAIL_QUEUE" default:"false"`

	// RedisAddr is a host:port or a redis:// URL
	RedisAddr         string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
}

// Load reads a .env file when present and then the process environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service can not start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return goerrors.New("auth signing key must be provided", goerrors.CategoryValidation)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return goerrors.New("db driver must be sqlite or postgres", goerrors.CategoryValidation)
	}
	return c.Mailer().Validate()
}

// Mailer returns the email sender configuration
func (c *Config) Mailer() mailer.Config {
	return mailer.Config{
		Service:  c.EmailService,
		User:     c.EmailUser,
		Password: c.EmailPassword,
		FromName: c.EmailFromName,
	}
}

// RedisOpt returns the asynq connection options for RedisAddr
func (c *Config) RedisOpt() (asynq.RedisClientOpt, error) {
	if !strings.Contains(c.RedisAddr, "://") {
		return asynq.RedisClientOpt{Addr: c.RedisAddr}, nil
	}

	opt, err := redis.ParseURL(c.RedisAddr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:     opt.Addr,
		Username: opt.Username,
		Password: opt.Password,
		DB:       opt.DB,
	}, nil
}

func (c *Config) GetSigningKey() string   { return c.SigningKey }
func (c *Config) GetTokenExpiration() int { return c.TokenExpiration }
func (c *Config) GetIssuer() string       { return c.Issuer }
func (c *Config) GetAudience() []string   { return c.Audience }
func (c *Config) GetContextKey() string   { return c.ContextKey }
func (c *Config) GetTokenLookup() string  { return c.TokenLookup }
func (c *Config) GetAuthScheme() string   { return c.AuthScheme }

var _ auth.Config = (*Config)(nil)
