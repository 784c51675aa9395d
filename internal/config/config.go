package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                   int    `env:"PORT" envDefault:"8080"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	RedisURL               string `env:"REDIS_URL,required"`
	HostTokenSecret        string `env:"HOST_TOKEN_SECRET,required"`
	DefaultMaxParticipants int    `env:"DEFAULT_MAX_PARTICIPANTS" envDefault:"50"`
	SessionIdleTTLHours    int    `env:"SESSION_IDLE_TTL_HOURS" envDefault:"24"`
	JoinRateLimitPerMin    int    `env:"JOIN_RATE_LIMIT_PER_MIN" envDefault:"30"`
	AnswerRateLimitPerMin  int    `env:"ANSWER_RATE_LIMIT_PER_MIN" envDefault:"120"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.DefaultMaxParticipants <= 0 {
		return fmt.Errorf("DEFAULT_MAX_PARTICIPANTS must be positive")
	}
	if c.SessionIdleTTLHours <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL_HOURS must be positive")
	}

	if isProduction {
		if err := validateSecret("HOST_TOKEN_SECRET", c.HostTokenSecret); err != nil {
			return err
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
