package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const envPrefix = "YTSUM_"

type Config struct {
	Server     ServerConfig     `yaml:"server"     envPrefix:"SERVER_"`
	Summarizer SummarizerConfig `yaml:"summarizer" envPrefix:"SUMMARIZER_"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Log        LogConfig        `yaml:"log"        envPrefix:"LOG_"`
	Database   DatabaseConfig   `yaml:"database"   envPrefix:"DATABASE_"`
	Archive    ArchiveConfig    `yaml:"archive"    envPrefix:"ARCHIVE_"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type SummarizerConfig struct {
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	Debug   bool   `yaml:"debug"    env:"DEBUG"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"             env:"ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	BurstSize         int  `yaml:"burst_size"          env:"BURST_SIZE"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	// Dir enables a rotated log file next to stdout when set.
	Dir string `yaml:"dir" env:"DIR"`
}

type DatabaseConfig struct {
	// Path of the history database. Empty disables history.
	Path string `yaml:"path" env:"PATH"`
}

// ArchiveConfig points at an S3 compatible bucket. Empty Bucket disables the
// archive.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"     env:"BUCKET"`
	Region    string `yaml:"region"     env:"REGION"`
	Endpoint  string `yaml:"endpoint"   env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  75 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Summarizer: SummarizerConfig{
			BaseURL: "https://ytsum.herokuapp.com",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: DatabaseConfig{
			Path: "./data/summaries.db",
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and YTSUM_ prefixed environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Server.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return errors.New("server.write_timeout must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		return errors.New("server.idle_timeout must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be greater than 0")
	}
	if c.Summarizer.BaseURL == "" {
		return errors.New("summarizer.base_url is required")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rate_limit.requests_per_minute must be greater than 0")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	if c.Archive.Bucket != "" && c.Archive.Region == "" {
		return errors.New("archive.region is required when archive.bucket is set")
	}
	if (c.Archive.AccessKey == "") != (c.Archive.SecretKey == "") {
		return errors.New("archive.access_key and archive.secret_key must be set together")
	}
	return nil
}
