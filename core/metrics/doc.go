package metrics

// Package metrics defines interfaces for collecting allocation metrics.
// Sinks like PromSink and InfluxSink record assignments, batch outcomes and
// delivery acknowledgments and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when multiple sinks are configured.
