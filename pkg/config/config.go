package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Klutch   KlutchConfig
	OpenAI   OpenAIConfig
	Cooldown CooldownConfig
	Queue    QueueConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port string
}

// KlutchConfig holds the upstream query-API endpoint and the credential
// pair exchanged for session tokens. CardID scopes rules created for a
// single card.
type KlutchConfig struct {
	Endpoint  string
	ClientID  string
	SecretKey string
	CardID    string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// CooldownConfig names the monitored rule, the decline-reason marker
// that triggers its suspension, and how long the suspension lasts.
type CooldownConfig struct {
	RuleName string
	Marker   string
	Duration time.Duration
}

// QueueConfig bounds the fire-and-forget cooldown work.
type QueueConfig struct {
	Size    int
	Workers int
}

type LoggerConfig struct {
	Level string
}

func Load() (*Config, error) {
	// .env is optional; environment variables alone work for Docker/K8s.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cooldownSeconds, _ := strconv.Atoi(getEnv("COOLDOWN_SECONDS", "300"))
	queueSize, _ := strconv.Atoi(getEnv("QUEUE_SIZE", "64"))
	queueWorkers, _ := strconv.Atoi(getEnv("QUEUE_WORKERS", "4"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "3000"),
		},
		Klutch: KlutchConfig{
			Endpoint:  getEnv("KLUTCH_ENDPOINT", ""),
			ClientID:  getEnv("KLUTCH_CLIENT_ID", ""),
			SecretKey: getEnv("KLUTCH_SECRET_KEY", ""),
			CardID:    getEnv("CARD_ID", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		},
		Cooldown: CooldownConfig{
			RuleName: getEnv("COOLDOWN_RULE_NAME", "swipe_twice_rule"),
			Marker:   getEnv("COOLDOWN_MARKER", "Swipe Twice"),
			Duration: time.Duration(cooldownSeconds) * time.Second,
		},
		Queue: QueueConfig{
			Size:    queueSize,
			Workers: queueWorkers,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Klutch.Endpoint == "" {
		return nil, fmt.Errorf("KLUTCH_ENDPOINT is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
