package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Backend BackendConfig `json:"backend"`
	Gemini  GeminiConfig  `json:"gemini"`
	Session SessionConfig `json:"session"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// BackendConfig points at the external MRV REST backend
type BackendConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// GeminiConfig configures the generative-text endpoint
type GeminiConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// SessionConfig configures session persistence and the demo login
type SessionConfig struct {
	StoragePath      string `json:"storage_path"`
	DemoLoginEnabled bool   `json:"demo_login_enabled"`
	DemoEmail        string `json:"demo_email"`
	DemoPassword     string `json:"demo_password"`
	DemoTokenSecret  string `json:"demo_token_secret"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL: "https://bluecarbon-backend-uodp.onrender.com",
			Timeout: 10 * time.Second,
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-pro",
		},
		Session: SessionConfig{
			StoragePath:      "admin-console.db",
			DemoLoginEnabled: true,
			DemoEmail:        "test123@gmail.com",
			DemoPassword:     "test123#",
			DemoTokenSecret:  "bluecarbon-demo-secret",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if baseURL := os.Getenv("BACKEND_BASE_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if timeout := os.Getenv("BACKEND_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Backend.Timeout = d
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if endpoint := os.Getenv("GEMINI_ENDPOINT"); endpoint != "" {
		config.Gemini.Endpoint = endpoint
	}
	if path := os.Getenv("SESSION_STORAGE_PATH"); path != "" {
		config.Session.StoragePath = path
	}
	if demo := os.Getenv("DEMO_LOGIN_ENABLED"); demo != "" {
		if b, err := strconv.ParseBool(demo); err == nil {
			config.Session.DemoLoginEnabled = b
		}
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
