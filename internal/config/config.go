package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
		MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	} `yaml:"server"`

	Model struct {
		// APIKey is normally supplied through GEMINI_API_KEY rather than the file.
		APIKey      string        `yaml:"apiKey"`
		BaseURL     string        `yaml:"baseURL"`
		Name        string        `yaml:"name"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"model"`

	Upload struct {
		MaxBytes int64 `yaml:"maxBytes"`
	} `yaml:"upload"`

	// CORS defaults to every origin, which is not suitable for production.
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or variable overrides it.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8000
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 90 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.MaxBodyBytes = 1 << 20
	cfg.Model.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	cfg.Model.Name = "gemini-2.5-flash"
	cfg.Model.Temperature = 0.1
	cfg.Model.Timeout = 60 * time.Second
	cfg.Upload.MaxBytes = 10 << 20
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return &cfg
}

// Load reads .env (if any), then the YAML file at path (if any), then
// applies environment overrides. A missing file is not an error; an
// unreadable or malformed one is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SENTINEL_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("SENTINEL_MODEL_BASE_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("SENTINEL_MODEL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SENTINEL_MODEL_TIMEOUT %q: %w", v, err)
		}
		c.Model.Timeout = d
	}
	if v := os.Getenv("SENTINEL_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// ModelConfigured reports whether the external model credential is present.
func (c *Config) ModelConfigured() bool {
	return strings.TrimSpace(c.Model.APIKey) != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
