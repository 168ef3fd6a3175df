package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Venues) == 0 {
		return errors.New("at least one venue is required")
	}
	for i, v := range c.Venues {
		if v.Name == "" {
			return fmt.Errorf("venues[%d].name is required", i)
		}
		if v.URL == "" {
			return fmt.Errorf("venues[%d].url is required", i)
		}
		if v.Connections < 1 {
			return fmt.Errorf("venues[%d].connections must be >= 1", i)
		}
	}

	if c.Router.Shards < 1 {
		return errors.New("router.shards must be >= 1")
	}
	if c.Router.FastRingSize < 1 {
		return errors.New("router.fast_ring_size must be >= 1")
	}
	if c.Router.WarmBufferSize < 1 {
		return errors.New("router.warm_buffer_size must be >= 1")
	}
	if c.Router.ColdBufferSize < 1 {
		return errors.New("router.cold_buffer_size must be >= 1")
	}

	if len(c.Engine.Strategies) == 0 {
		return errors.New("engine.strategies must name at least one strategy")
	}
	for i, s := range c.Engine.Strategies {
		if s.Name == "" {
			return fmt.Errorf("engine.strategies[%d].name is required", i)
		}
	}

	if c.Coordinator.Window <= 0 {
		return errors.New("coordinator.window must be > 0")
	}

	if c.Gateway.Mode != "simulation" && c.Gateway.Mode != "live" {
		return fmt.Errorf("gateway.mode must be \"simulation\" or \"live\", got %q", c.Gateway.Mode)
	}
	if c.Gateway.MaxOrderSize <= 0 {
		return errors.New("gateway.max_order_size must be > 0")
	}

	if c.Recorder.BatchSize < 1 {
		return errors.New("recorder.batch_size must be >= 1")
	}
	if c.Recorder.BufferSize < 1 {
		return errors.New("recorder.buffer_size must be >= 1")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
