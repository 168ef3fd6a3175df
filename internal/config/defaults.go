package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultIngestBufferSize   = 10000
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultReadTimeout        = 30 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultReconnectJitter    = 0.2

	DefaultShards         = 1
	DefaultFastRingSize   = 1024
	DefaultWarmBufferSize = 4096
	DefaultColdBufferSize = 4096
	DefaultStaleAfter     = 2 * time.Second

	DefaultCoordinatorWindow = 500 * time.Millisecond
	DefaultCoordinatorBuffer = 1024

	DefaultGatewayMode   = "simulation"
	DefaultMaxOrderSize  = 1000
	DefaultGatewayBuffer = 256

	DefaultBatchSize     = 1000
	DefaultFlushInterval = 1 * time.Second
	DefaultRecorderBuf   = 10000

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultHealthPort  = 8080
	DefaultMetricsPath = "/metrics"
)

func (c *Config) applyDefaults() {
	// Ingest defaults
	if c.Ingest.BufferSize == 0 {
		c.Ingest.BufferSize = DefaultIngestBufferSize
	}
	if c.Ingest.HandshakeTimeout == 0 {
		c.Ingest.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Ingest.PingInterval == 0 {
		c.Ingest.PingInterval = DefaultPingInterval
	}
	if c.Ingest.ReadTimeout == 0 {
		c.Ingest.ReadTimeout = DefaultReadTimeout
	}
	if c.Ingest.ReconnectBaseDelay == 0 {
		c.Ingest.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Ingest.ReconnectMaxDelay == 0 {
		c.Ingest.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Ingest.ReconnectJitter == 0 {
		c.Ingest.ReconnectJitter = DefaultReconnectJitter
	}

	// Venue defaults
	for i := range c.Venues {
		if c.Venues[i].Connections == 0 {
			c.Venues[i].Connections = 1
		}
	}

	// Router defaults
	if c.Router.Shards == 0 {
		c.Router.Shards = DefaultShards
	}
	if c.Router.FastRingSize == 0 {
		c.Router.FastRingSize = DefaultFastRingSize
	}
	if c.Router.WarmBufferSize == 0 {
		c.Router.WarmBufferSize = DefaultWarmBufferSize
	}
	if c.Router.ColdBufferSize == 0 {
		c.Router.ColdBufferSize = DefaultColdBufferSize
	}
	if c.Router.StaleAfter == 0 {
		c.Router.StaleAfter = DefaultStaleAfter
	}

	// Coordinator defaults
	if c.Coordinator.Window == 0 {
		c.Coordinator.Window = DefaultCoordinatorWindow
	}
	if c.Coordinator.BufferSize == 0 {
		c.Coordinator.BufferSize = DefaultCoordinatorBuffer
	}

	// Gateway defaults
	if c.Gateway.Mode == "" {
		c.Gateway.Mode = DefaultGatewayMode
	}
	if c.Gateway.MaxOrderSize == 0 {
		c.Gateway.MaxOrderSize = DefaultMaxOrderSize
	}
	if c.Gateway.BufferSize == 0 {
		c.Gateway.BufferSize = DefaultGatewayBuffer
	}

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultRecorderBuf
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.MetricsPath == "" {
		c.Health.MetricsPath = DefaultMetricsPath
	}
}
