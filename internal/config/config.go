package config

import "time"

// Config is the root configuration for an engine instance.
type Config struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Venues      []VenueConfig     `yaml:"venues"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Router      RouterConfig      `yaml:"router"`
	Engine      EngineConfig      `yaml:"engine"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Recorder    RecorderConfig    `yaml:"recorder"`
	Database    DBConfig          `yaml:"database"`
	Health      HealthConfig      `yaml:"health"`
}

// InstanceConfig identifies this engine instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// VenueConfig holds one upstream venue feed. Each connection counts as
// an independent ingest instance feeding the same normalizer.
type VenueConfig struct {
	Name        string   `yaml:"name"`
	URL         string   `yaml:"url"`
	APIKey      string   `yaml:"api_key"` // supplied via ${VAR} expansion, never hardcoded
	Connections int      `yaml:"connections"`
	Channels    []string `yaml:"channels"`
}

// IngestConfig holds WebSocket client and reconnect settings shared by
// all venue connections.
type IngestConfig struct {
	BufferSize         int           `yaml:"buffer_size"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	ReconnectJitter    float64       `yaml:"reconnect_jitter"`
}

// RouterConfig holds priority classification and shard settings.
// Shard count is fixed for the life of the process; changing it
// requires a restart.
type RouterConfig struct {
	Shards         int           `yaml:"shards"`
	FastRingSize   int           `yaml:"fast_ring_size"`
	WarmBufferSize int           `yaml:"warm_buffer_size"`
	ColdBufferSize int           `yaml:"cold_buffer_size"`
	StaleAfter     time.Duration `yaml:"stale_after"`
	Watchlist      []string      `yaml:"watchlist"`
}

// EngineConfig holds per-shard engine settings.
type EngineConfig struct {
	Strategies []StrategyConfig `yaml:"strategies"`
}

// StrategyConfig configures one registered strategy.
type StrategyConfig struct {
	Name      string  `yaml:"name"`
	Priority  int     `yaml:"priority"`
	Quantity  float64 `yaml:"quantity"`
	Fast      int     `yaml:"fast"`
	Slow      int     `yaml:"slow"`
	Lookback  int     `yaml:"lookback"`
	Threshold float64 `yaml:"threshold"`
}

// CoordinatorConfig holds decision merge settings.
type CoordinatorConfig struct {
	Window     time.Duration `yaml:"window"`
	BufferSize int           `yaml:"buffer_size"`
}

// GatewayConfig holds order gateway settings.
type GatewayConfig struct {
	Mode         string  `yaml:"mode"` // "simulation" or "live"
	MaxOrderSize float64 `yaml:"max_order_size"`
	BufferSize   int     `yaml:"buffer_size"`
}

// RecorderConfig holds batch persistence settings.
type RecorderConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds the Postgres connection for the durable store.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the read-only health/metrics HTTP surface.
type HealthConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}
