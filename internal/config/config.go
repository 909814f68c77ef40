package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	log "github.com/sirupsen/logrus"
)

// API_URL is the backend used when neither the config file nor the
// environment names one.
const API_URL = "http://localhost:5000"

const appDirName = ".todo-manager"

type Config struct {
	APIURL         string        `yaml:"api_url" env:"API_URL" env-default:"http://localhost:5000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"15s"`
	DataDir        string        `yaml:"data_dir" env:"DATA_DIR"`
	MemorySession  bool          `yaml:"memory_session" env:"MEMORY_SESSION"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configPath if it exists and falls back to the environment
// alone when it does not.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, cfg.normalize()
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("cannot read env: %w", err)
		}
	}
	return cfg, cfg.normalize()
}

// MustLoad is Load for main: any error is fatal.
func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = API_URL
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s: must be greater than zero", c.RequestTimeout)
	}
	if c.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		c.DataDir = filepath.Join(homeDir, appDirName)
	}
	return nil
}

// Level maps LogLevel onto a logrus level, defaulting to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
