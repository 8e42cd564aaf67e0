package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/luanbartole/powerblog/internal/common"
)

type Config struct {
	Port               string `mapstructure:"PORT"`
	Environment        string `mapstructure:"ENVIRONMENT"`
	Version            string `mapstructure:"VERSION"`
	TLSCertFile        string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile         string `mapstructure:"TLS_KEY_FILE"`
	BcryptCost         int    `mapstructure:"BCRYPT_COST"`
	LoginGenericErrors bool   `mapstructure:"LOGIN_GENERIC_ERRORS"`

	Session   SessionConfig   `mapstructure:",squash"`
	DB        DBConfig        `mapstructure:",squash"`
	Mail      MailConfig      `mapstructure:",squash"`
	RabbitMQ  RabbitMQConfig  `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"SESSION_SECRET"`
	MaxAge time.Duration `mapstructure:"SESSION_MAX_AGE"`
}

type DBConfig struct {
	Driver       string        `mapstructure:"DB_DRIVER"`
	DSN          string        `mapstructure:"DB_DSN"`
	MaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxIdleTime  time.Duration `mapstructure:"DB_MAX_IDLE_TIME"`
}

type MailConfig struct {
	Host      string        `mapstructure:"MAIL_HOST"`
	Port      int           `mapstructure:"MAIL_PORT"`
	User      string        `mapstructure:"MAIL_USER"`
	Password  string        `mapstructure:"MAIL_PASSWORD"`
	Sender    string        `mapstructure:"MAIL_SENDER"`
	Recipient string        `mapstructure:"MAIL_RECIPIENT"`
	Timeout   time.Duration `mapstructure:"MAIL_TIMEOUT"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"RABBITMQ_HOST"`
	Port     int    `mapstructure:"RABBITMQ_PORT"`
	User     string `mapstructure:"RABBITMQ_USER"`
	Password string `mapstructure:"RABBITMQ_PASSWORD"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	Burst   int     `mapstructure:"RATE_LIMIT_BURST"`
}

const minSessionSecretLength = 32

// every key needs a default so that environment-only deployments are picked
// up by Unmarshal
var configDefaults = map[string]any{
	"PORT":                 ":8080",
	"ENVIRONMENT":          "development",
	"VERSION":              "1.0.0",
	"TLS_CERT_FILE":        "",
	"TLS_KEY_FILE":         "",
	"BCRYPT_COST":          12,
	"LOGIN_GENERIC_ERRORS": false,
	"SESSION_SECRET":       "",
	"SESSION_MAX_AGE":      30 * 24 * time.Hour,
	"DB_DRIVER":            common.DriverSQLite,
	"DB_DSN":               "posts.db",
	"DB_MAX_OPEN_CONNS":    10,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_MAX_IDLE_TIME":     15 * time.Minute,
	"MAIL_HOST":            "smtp.gmail.com",
	"MAIL_PORT":            587,
	"MAIL_USER":            "",
	"MAIL_PASSWORD":        "",
	"MAIL_SENDER":          "",
	"MAIL_RECIPIENT":       "",
	"MAIL_TIMEOUT":         10 * time.Second,
	"RABBITMQ_HOST":        "",
	"RABBITMQ_PORT":        5672,
	"RABBITMQ_USER":        "guest",
	"RABBITMQ_PASSWORD":    "guest",
	"RATE_LIMIT_ENABLED":   true,
	"RATE_LIMIT_RPS":       2.0,
	"RATE_LIMIT_BURST":     4,
}

// loadConfig reads the optional env file at path and lets environment
// variables override it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.Session.Secret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters long", minSessionSecretLength)
	}

	switch c.DB.Driver {
	case common.DriverSQLite, common.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", common.DriverSQLite, common.DriverPostgres)
	}

	if c.Environment == "production" && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required in production")
	}

	return nil
}

func (c *Config) isProduction() bool {
	return c.Environment == "production"
}
