// Package config loads the estimator service configuration.
//
// Values come from an optional YAML file named by ESTIMATOR_CONFIG, then from
// environment variables, then from the env-default tags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// PathEnv names the environment variable holding the YAML config path.
const PathEnv = "ESTIMATOR_CONFIG"

type Config struct {
	Env         string `yaml:"env" env:"ESTIMATOR_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"ESTIMATOR_DB" env-default:"estimator.db"`
	Scenario    string `yaml:"scenario" env:"ESTIMATOR_SCENARIO"`
	HTTPServer  `yaml:"http_server"`
	Auditor     `yaml:"auditor"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"ESTIMATOR_HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout        time.Duration `yaml:"timeout" env:"ESTIMATOR_HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"ESTIMATOR_HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" env:"ESTIMATOR_HTTP_SHUTDOWN_GRACE" env-default:"30s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ESTIMATOR_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:8080"`
}

// Auditor runs unless Disabled is set. Disabled carries no env-default:
// cleanenv applies defaults to zero values, which would mask an explicit false.
type Auditor struct {
	Disabled bool          `yaml:"disabled" env:"ESTIMATOR_AUDITOR_DISABLED"`
	Interval time.Duration `yaml:"interval" env:"ESTIMATOR_AUDITOR_INTERVAL" env-default:"5m"`
}

// Load reads the config file named by ESTIMATOR_CONFIG, if any, and the
// environment.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv(PathEnv); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// Enabled reports whether the conflict auditor should run.
func (a Auditor) Enabled() bool { return !a.Disabled }

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: env must be one of local, dev, prod, got %q", c.Env)
	}
	if c.StoragePath == "" {
		return fmt.Errorf("config: storage_path must not be empty")
	}
	if c.Auditor.Enabled() && c.Auditor.Interval <= 0 {
		return fmt.Errorf("config: auditor interval must be positive, got %s", c.Auditor.Interval)
	}
	return nil
}
