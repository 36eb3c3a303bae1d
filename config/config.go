package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Agent      AgentConfig      `yaml:"agent"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Mailer     MailerConfig     `yaml:"mailer"`
	Push       PushConfig       `yaml:"push"`
	Upload     UploadConfig     `yaml:"upload"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the fleet server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// AgentConfig holds the field agent configuration.
type AgentConfig struct {
	Port                  int           `yaml:"port"`
	UserID                string        `yaml:"user_id"`
	QueueDSN              string        `yaml:"queue_dsn"`
	ServerBaseURL         string        `yaml:"server_base_url"`
	CheckURL              string        `yaml:"connectivity_check_url"`
	CheckIntervalSeconds  int           `yaml:"connectivity_check_interval_seconds"`
	CheckInterval         time.Duration `yaml:"-"` // Ignored by YAML parser
	ProfileTimeoutSeconds int           `yaml:"profile_timeout_seconds"`
	ProfileTimeout        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// StorageConfig holds the S3-compatible object storage configuration.
type StorageConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// MailerConfig holds the transactional email provider configuration.
type MailerConfig struct {
	ProviderURL string `yaml:"provider_url"`
	APIKey      string `yaml:"api_key"`
	From        string `yaml:"from"`
}

// UploadConfig holds the image adapter bounds.
type UploadConfig struct {
	MaxImageWidth int `yaml:"max_image_width"`
	JPEGQuality   int `yaml:"jpeg_quality"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Agent.CheckIntervalSeconds <= 0 {
		cfg.Agent.CheckIntervalSeconds = 15
	}
	cfg.Agent.CheckInterval = time.Duration(cfg.Agent.CheckIntervalSeconds) * time.Second

	if cfg.Agent.ProfileTimeoutSeconds <= 0 {
		cfg.Agent.ProfileTimeoutSeconds = 3
	}
	cfg.Agent.ProfileTimeout = time.Duration(cfg.Agent.ProfileTimeoutSeconds) * time.Second

	if cfg.Agent.QueueDSN == "" {
		cfg.Agent.QueueDSN = "./fleet-agent.db"
	}

	if cfg.Upload.MaxImageWidth <= 0 {
		cfg.Upload.MaxImageWidth = 1280
	}
	if cfg.Upload.JPEGQuality <= 0 || cfg.Upload.JPEGQuality > 100 {
		cfg.Upload.JPEGQuality = 80
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
