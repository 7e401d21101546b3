package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "OSINTDASH_CONFIG"
	envAPIURL     = "OSINTDASH_API_URL"
	envWSURL      = "OSINTDASH_WS_URL"

	defaultAPIURL = "http://localhost:8000"
)

// Config is the client configuration. Every field has a usable default, so
// a missing config file is not an error.
type Config struct {
	APIURL string `yaml:"api_url"`
	WSURL  string `yaml:"ws_url"`
	Poll   Poll   `yaml:"poll"`
}

// Poll holds the refresh intervals, in seconds, per collection.
type Poll struct {
	ScansSeconds     int `yaml:"scans_seconds"`
	SchedulesSeconds int `yaml:"schedules_seconds"`
	ProjectsSeconds  int `yaml:"projects_seconds"`
}

func defaults() *Config {
	return &Config{
		APIURL: defaultAPIURL,
		Poll: Poll{
			ScansSeconds:     8,
			SchedulesSeconds: 15,
			ProjectsSeconds:  30,
		},
	}
}

// Load reads the config at path, falling back to the default search order
// when path is empty: $OSINTDASH_CONFIG, ./osintdash.yaml, then
// ~/.config/osintdash/config.yaml. Environment variables override file
// values. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat("osintdash.yaml"); err == nil {
		return "osintdash.yaml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "osintdash", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(envWSURL); v != "" {
		cfg.WSURL = v
	}
}

func normalize(cfg *Config) {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Poll.ScansSeconds <= 0 {
		cfg.Poll.ScansSeconds = 8
	}
	if cfg.Poll.SchedulesSeconds <= 0 {
		cfg.Poll.SchedulesSeconds = 15
	}
	if cfg.Poll.ProjectsSeconds <= 0 {
		cfg.Poll.ProjectsSeconds = 30
	}
}

func (c *Config) ScansInterval() time.Duration {
	return time.Duration(c.Poll.ScansSeconds) * time.Second
}

func (c *Config) SchedulesInterval() time.Duration {
	return time.Duration(c.Poll.SchedulesSeconds) * time.Second
}

func (c *Config) ProjectsInterval() time.Duration {
	return time.Duration(c.Poll.ProjectsSeconds) * time.Second
}
