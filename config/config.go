package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/metrics"
	"github.com/kilianp07/mealmatch/infra/mqtt"
)

type Config struct {
	MQTT       mqtt.Config       `json:"mqtt"`
	Allocation allocation.Config `json:"allocation"`
	Metrics    metrics.Config    `json:"metrics"`
	Logging    LoggingConfig     `json:"logging"`
	API        APIConfig         `json:"api"`
	// FleetPath points to the recipients and volunteers seeding the stores.
	FleetPath string `json:"fleet_path"`
	// LogLevel is the minimum zerolog level, e.g. "info" or "debug".
	LogLevel string `json:"log_level"`
}

// newKoanf loads path with the parser matching its extension.
func newKoanf(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	return k, nil
}

func Load(path string) (*Config, error) {
	k, err := newKoanf(path)
	if err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// a relative fleet path is resolved against the config file
	if cfg.FleetPath != "" && !filepath.IsAbs(cfg.FleetPath) {
		cfg.FleetPath = filepath.Join(filepath.Dir(path), cfg.FleetPath)
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Allocation.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
	if c.MQTT.AckTopic == "" {
		c.MQTT.AckTopic = "volunteer/+/ack"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if c.Allocation.PublishDeliveries && c.MQTT.Broker == "" {
		return fmt.Errorf("allocation: publish_deliveries requires mqtt.broker")
	}
	return nil
}
