package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "weatherbot/core/config"
	coredatabase "weatherbot/core/database"
	"weatherbot/internal/conversation"
	"weatherbot/internal/geo"
	"weatherbot/internal/weather"
)

const (
	defaultGeoBaseURL     = "https://us1.locationiq.com"
	defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
)

// Config is the full application configuration: the reusable core section
// plus the weather bot's own collaborators.
type Config struct {
	Core         coreconfig.Config   `yaml:",inline"`
	Database     coredatabase.Config `yaml:"database"`
	Geo          geo.Config          `yaml:"geo"`
	Weather      weather.Config      `yaml:"weather"`
	Conversation conversation.Config `yaml:"conversation"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads configuration from a YAML file and environment
// variables, then validates the sections the bot cannot run without.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}

	if cfg.Geo.Token == "" {
		return nil, fmt.Errorf("geo.token is required")
	}
	if cfg.Weather.Token == "" {
		return nil, fmt.Errorf("weather.token is required")
	}
	if cfg.Geo.BaseURL == "" {
		cfg.Geo.BaseURL = defaultGeoBaseURL
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = defaultWeatherBaseURL
	}
	return &cfg, nil
}
