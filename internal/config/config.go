package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from YAML with environment
// overrides for the secrets.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	Recordings struct {
		Dir string `yaml:"dir"`
	} `yaml:"recordings"`

	Surveillance struct {
		SampleIntervalMs   int     `yaml:"sample_interval_ms"`
		CooldownMs         int     `yaml:"cooldown_ms"`
		RecordingSeconds   int     `yaml:"recording_seconds"`
		SweepSeconds       int     `yaml:"sweep_seconds"`
		Sensitivity        int     `yaml:"sensitivity"`
		PercentThreshold   float64 `yaml:"percent_threshold"`
		ShopOpeningTime    string  `yaml:"shop_opening_time"`
		ShopClosingTime    string  `yaml:"shop_closing_time"`
		WatchdogIntervalMs int     `yaml:"watchdog_interval_ms"`
	} `yaml:"surveillance"`
}

// Load reads the YAML file and applies defaults and env overrides.
// SHOPGUARD_JWT_SECRET, SHOPGUARD_REDIS_ADDR, SHOPGUARD_PG_DSN and
// SHOPGUARD_NATS_URL win over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHOPGUARD_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SHOPGUARD_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SHOPGUARD_PG_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("SHOPGUARD_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "shopguard.events"
	}
	if cfg.Recordings.Dir == "" {
		cfg.Recordings.Dir = "recordings"
	}
	s := &cfg.Surveillance
	if s.SampleIntervalMs == 0 {
		s.SampleIntervalMs = 100
	}
	if s.CooldownMs == 0 {
		s.CooldownMs = 3000
	}
	if s.RecordingSeconds == 0 {
		s.RecordingSeconds = 15
	}
	if s.SweepSeconds == 0 {
		s.SweepSeconds = 10
	}
	if s.Sensitivity == 0 {
		s.Sensitivity = 25
	}
	if s.PercentThreshold == 0 {
		s.PercentThreshold = 15
	}
	if s.ShopOpeningTime == "" {
		s.ShopOpeningTime = "09:00"
	}
	if s.ShopClosingTime == "" {
		s.ShopClosingTime = "18:00"
	}
	if s.WatchdogIntervalMs == 0 {
		s.WatchdogIntervalMs = 5000
	}
}
