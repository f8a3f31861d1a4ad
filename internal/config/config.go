package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminSecret string `yaml:"admin_secret"` // HS256 key for admin tokens
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	PlanTTL time.Duration `yaml:"plan_ttl"`
}

type WebhookConfig struct {
	Workers  int           `yaml:"workers"`
	Queue    int           `yaml:"queue"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
	Gateways []string      `yaml:"gateways"` // gateway names accepted at intake
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type ReconcilerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Batch    int           `yaml:"batch"`
}

type PaymentConfig struct {
	DefaultCurrency string        `yaml:"default_currency"`
	PayCodeTTL      time.Duration `yaml:"pay_code_ttl"`
	Gateway         struct {
		Name    string `yaml:"name"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"gateway"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	Payment    PaymentConfig    `yaml:"payment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cache.PlanTTL <= 0 {
		cfg.Cache.PlanTTL = 5 * time.Minute
	}
	if cfg.Webhook.Workers <= 0 {
		cfg.Webhook.Workers = 8
	}
	if cfg.Webhook.Queue <= 0 {
		cfg.Webhook.Queue = 256
	}
	if cfg.Webhook.DedupTTL <= 0 {
		cfg.Webhook.DedupTTL = 24 * time.Hour
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = time.Minute
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = 5 * time.Minute
	}
	if cfg.Reconciler.Batch <= 0 {
		cfg.Reconciler.Batch = 100
	}
	if cfg.Payment.DefaultCurrency == "" {
		cfg.Payment.DefaultCurrency = "BRL"
	}
	if cfg.Payment.PayCodeTTL <= 0 {
		cfg.Payment.PayCodeTTL = 30 * time.Minute
	}
	if cfg.Payment.Gateway.Name == "" {
		cfg.Payment.Gateway.Name = "pagopix"
	}
	if len(cfg.Webhook.Gateways) == 0 {
		cfg.Webhook.Gateways = []string{cfg.Payment.Gateway.Name}
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.AdminSecret == "" && !dev {
		return nil, errors.New("server.admin_secret is required outside dev")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
