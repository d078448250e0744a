package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// service config, loaded once at startup
type Config struct {
	Port            string
	RedisAddr       string
	AllowedOrigins  []string
	MatchRetention  time.Duration
	CleanupSchedule string
	MessageRate     float64
	MessageBurst    int
	STUNServers     []string
	TURNURL         string
	TURNUsername    string
	TURNPassword    string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	retention, err := time.ParseDuration(getEnvOrDefault("MATCH_RETENTION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_RETENTION: %w", err)
	}
	rate, err := strconv.ParseFloat(getEnvOrDefault("WS_MESSAGE_RATE", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WS_MESSAGE_RATE: %w", err)
	}
	burst, err := strconv.Atoi(getEnvOrDefault("WS_MESSAGE_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_MESSAGE_BURST: %w", err)
	}

	config := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AllowedOrigins:  splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		MatchRetention:  retention,
		CleanupSchedule: getEnvOrDefault("CLEANUP_SCHEDULE", "@every 1h"),
		MessageRate:     rate,
		MessageBurst:    burst,
		STUNServers:     splitList(os.Getenv("STUN_SERVERS")),
		TURNURL:         os.Getenv("TURN_URL"),
		TURNUsername:    os.Getenv("TURN_USERNAME"),
		TURNPassword:    os.Getenv("TURN_PASSWORD"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.MatchRetention <= 0 {
		return errors.New("MATCH_RETENTION must be positive")
	}
	if config.MessageRate <= 0 || config.MessageBurst <= 0 {
		return errors.New("WS_MESSAGE_RATE and WS_MESSAGE_BURST must be positive")
	}
	if _, err := cron.ParseStandard(config.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid CLEANUP_SCHEDULE %q: %w", config.CleanupSchedule, err)
	}
	if config.TURNURL != "" && (config.TURNUsername == "" || config.TURNPassword == "") {
		return errors.New("TURN_URL requires TURN_USERNAME and TURN_PASSWORD")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
