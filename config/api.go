package config

import (
	"fmt"
	"strings"
)

// APIConfig configures the HTTP server.
type APIConfig struct {
	Address string `json:"address"`
	// Token protects the run log endpoint when set.
	Token       string `json:"token"`
	MetricsPath string `json:"metrics_path"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /")
	}
	if strings.HasPrefix(c.MetricsPath, "/api/") {
		return fmt.Errorf("metrics_path %s collides with the api routes", c.MetricsPath)
	}
	return nil
}
