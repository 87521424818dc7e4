package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	IssuerURL      string
	JWKSURL        string
	ClientID       string
	TokenUse       string
	ClockLeeway    time.Duration
	JWKSMinRefresh time.Duration
	JWKSRetries    int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	MaxDBConns             int32
	KafkaTopicProfileEvent string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	PublicProfileCacheTTL time.Duration
	IdempotencyTTL        time.Duration
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Issuer struct {
		URL      string `yaml:"url"`
		JWKSURL  string `yaml:"jwks_url"`
		ClientID string `yaml:"client_id"`
		TokenUse string `yaml:"token_use"`
	} `yaml:"issuer"`
	Dependencies struct {
		PostgresURL            string   `yaml:"postgres_url"`
		RedisURL               string   `yaml:"redis_url"`
		KafkaBrokers           []string `yaml:"kafka_brokers"`
		KafkaTopicProfileEvent string   `yaml:"kafka_topic_profile_event"`
	} `yaml:"dependencies"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:              "profile-gateway",
		HTTPPort:               8080,
		GRPCPort:               9090,
		TokenUse:               "id",
		ClockLeeway:            30 * time.Second,
		JWKSMinRefresh:         30 * time.Second,
		JWKSRetries:            3,
		MaxDBConns:             20,
		KafkaTopicProfileEvent: "profile.events",
		OutboxPollInterval:     2 * time.Second,
		OutboxBatchSize:        100,
		PublicProfileCacheTTL:  5 * time.Minute,
		IdempotencyTTL:         7 * 24 * time.Hour,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Issuer.URL != "" {
			cfg.IssuerURL = f.Issuer.URL
		}
		if f.Issuer.JWKSURL != "" {
			cfg.JWKSURL = f.Issuer.JWKSURL
		}
		if f.Issuer.ClientID != "" {
			cfg.ClientID = f.Issuer.ClientID
		}
		if f.Issuer.TokenUse != "" {
			cfg.TokenUse = f.Issuer.TokenUse
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicProfileEvent != "" {
			cfg.KafkaTopicProfileEvent = f.Dependencies.KafkaTopicProfileEvent
		}
	}

	cfg.IssuerURL = envOrDefault("ISSUER_URL", cfg.IssuerURL)
	cfg.JWKSURL = envOrDefault("JWKS_URL", cfg.JWKSURL)
	cfg.ClientID = envOrDefault("ISSUER_CLIENT_ID", cfg.ClientID)
	cfg.TokenUse = envOrDefault("TOKEN_USE", cfg.TokenUse)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicProfileEvent = envOrDefault("KAFKA_TOPIC_PROFILE_EVENT", cfg.KafkaTopicProfileEvent)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.ClockLeeway = time.Duration(envInt("CLOCK_LEEWAY_SECONDS", int(cfg.ClockLeeway.Seconds()))) * time.Second
	cfg.JWKSMinRefresh = time.Duration(envInt("JWKS_MIN_REFRESH_SECONDS", int(cfg.JWKSMinRefresh.Seconds()))) * time.Second
	cfg.JWKSRetries = envInt("JWKS_FETCH_RETRIES", cfg.JWKSRetries)
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.PublicProfileCacheTTL = time.Duration(envInt("PUBLIC_PROFILE_CACHE_SECONDS", int(cfg.PublicProfileCacheTTL.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour

	if cfg.IssuerURL == "" {
		return Config{}, fmt.Errorf("missing ISSUER_URL")
	}
	if cfg.ClientID == "" {
		return Config{}, fmt.Errorf("missing ISSUER_CLIENT_ID")
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = strings.TrimSuffix(cfg.IssuerURL, "/") + "/.well-known/jwks.json"
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
