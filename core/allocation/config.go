package allocation

// Config defines allocation-related settings.
type Config struct {
	AckTimeoutSeconds int  `json:"ack_timeout_seconds"`
	QueueSize         int  `json:"queue_size"`
	PublishDeliveries bool `json:"publish_deliveries"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.AckTimeoutSeconds <= 0 {
		c.AckTimeoutSeconds = 5
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 16
	}
}
