package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the ordering platform
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Ordering OrderingConfig `mapstructure:"ordering"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Log      LogConfig      `mapstructure:"log"`
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds the menu cache and login throttle backend
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	MenuTTL  time.Duration `mapstructure:"menu_ttl"`
}

// AuthConfig holds cookie token settings
type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	CookieName       string        `mapstructure:"cookie_name"`
	CookieSecure     bool          `mapstructure:"cookie_secure"`
	LoginMaxFailures int           `mapstructure:"login_max_failures"`
}

// OrderingConfig holds checkout pricing and numbering policy
type OrderingConfig struct {
	TaxRate             string `mapstructure:"tax_rate"`
	ServiceChargeRate   string `mapstructure:"service_charge_rate"`
	SnapshotSource      string `mapstructure:"snapshot_source"`
	NumberRetryAttempts int    `mapstructure:"number_retry_attempts"`
	MaxItems            int    `mapstructure:"max_items"`
}

// TelegramConfig holds the bot used for tenant notifications
type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file, an optional .env file and
// ORDERMENU_* environment variables, in increasing priority.
func Load(filename string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ordermenu")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", filename)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.public_base_url", "http://localhost:3000")

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ordermenu")
	v.SetDefault("database.password", "ordermenu")
	v.SetDefault("database.database", "ordermenu")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 25)

	v.SetDefault("rabbitmq.enabled", true)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.menu_ttl", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.cookie_name", "auth-token")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.login_max_failures", 5)

	v.SetDefault("ordering.tax_rate", "0.10")
	v.SetDefault("ordering.service_charge_rate", "0.05")
	v.SetDefault("ordering.snapshot_source", "server")
	v.SetDefault("ordering.number_retry_attempts", 5)
	v.SetDefault("ordering.max_items", 50)

	v.SetDefault("log.level", "info")
}

// Validate checks values that would otherwise fail deep inside a request
func (c *Config) Validate() error {
	if _, err := decimal.NewFromString(c.Ordering.TaxRate); err != nil {
		return errors.Wrapf(err, "invalid ordering.tax_rate %q", c.Ordering.TaxRate)
	}
	if _, err := decimal.NewFromString(c.Ordering.ServiceChargeRate); err != nil {
		return errors.Wrapf(err, "invalid ordering.service_charge_rate %q", c.Ordering.ServiceChargeRate)
	}
	switch c.Ordering.SnapshotSource {
	case "server", "client":
	default:
		return errors.Errorf("invalid ordering.snapshot_source %q: want server or client", c.Ordering.SnapshotSource)
	}
	if c.Ordering.NumberRetryAttempts < 1 {
		return errors.New("ordering.number_retry_attempts must be at least 1")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
