// Package config loads the service configuration from the environment
// (.env honored in development) into a typed struct.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	MongoURI string `env:"MONGO_URI,required"`
	MongoDB  string `env:"MONGO_DB" envDefault:"konnekt"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	OTPTTL    time.Duration `env:"OTP_TTL" envDefault:"15m"`

	SignupBonus   int64 `env:"SIGNUP_BONUS" envDefault:"100"`
	ReferralBonus int64 `env:"REFERRAL_BONUS" envDefault:"25"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	// OTP issuance rate limiting; disabled when RedisAddr is empty.
	RedisAddr     string        `env:"REDIS_ADDR"`
	OTPRateLimit  int           `env:"OTP_RATE_LIMIT" envDefault:"5"`
	OTPRateWindow time.Duration `env:"OTP_RATE_WINDOW" envDefault:"15m"`

	GeocoderURL string `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
