package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV"          envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT"         envDefault:"8000"  validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"  validate:"oneof=debug info warn error"`
	ProjectName string `env:"PROJECT_NAME" envDefault:"DRS Backend"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	SMS   SMSConfig

	OTPTTLSec int    `env:"OTP_TTL_SEC" envDefault:"300" validate:"min=30,max=3600"`
	JWTSecret string `env:"JWT_SECRET"                   validate:"omitempty,min=32"`
}

type RedisConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost" validate:"required"`
	Port     int    `env:"PORT"     envDefault:"6379"      validate:"min=1,max=65535"`
	DB       int    `env:"DB"       envDefault:"0"         validate:"min=0,max=15"`
	Password string `env:"PASSWORD"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SMSConfig selects the gateway. Credentials are only checked when mock mode is off.
type SMSConfig struct {
	MockMode bool   `env:"MOCK_SMS_MODE"  envDefault:"true"`
	Provider string `env:"SMS_PROVIDER"   envDefault:"twilio" validate:"oneof=twilio sns"`

	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"  validate:"required_if=MockMode false Provider twilio"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"   validate:"required_if=MockMode false Provider twilio"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER" validate:"required_if=MockMode false Provider twilio"`

	SNSRegion string `env:"SNS_REGION" envDefault:"ap-south-1" validate:"required_if=Provider sns"`

	Workers        int `env:"SMS_WORKERS"          envDefault:"2"   validate:"min=1,max=32"`
	QueueSize      int `env:"SMS_QUEUE_SIZE"       envDefault:"256" validate:"min=1,max=10000"`
	SendTimeoutSec int `env:"SMS_SEND_TIMEOUT_SEC" envDefault:"10"  validate:"min=1,max=120"`
}

func (s SMSConfig) SendTimeout() time.Duration {
	return time.Duration(s.SendTimeoutSec) * time.Second
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLSec) * time.Second
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
