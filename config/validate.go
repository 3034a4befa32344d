package config

import "github.com/pagemill/formbridge/errors"

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	// Retry attempts: 0 = never suggest retries, negative = invalid
	if c.Engine.MaxRetryAttempts < 0 {
		return errors.Newf("engine.max_retry_attempts must be >= 0, got %d", c.Engine.MaxRetryAttempts)
	}

	// Timeout: 0 = no operation deadline, negative = invalid
	if c.Engine.TimeoutMS < 0 {
		return errors.Newf("engine.timeout_ms must be >= 0, got %d", c.Engine.TimeoutMS)
	}

	// Cache expiry: 0 = entries never age out, negative = invalid
	if c.Cache.ExpiryMS < 0 {
		return errors.Newf("cache.expiry_ms must be >= 0, got %d", c.Cache.ExpiryMS)
	}

	// Cache size: 0 = unbounded, negative = invalid
	if c.Cache.MaxSize < 0 {
		return errors.Newf("cache.max_size must be >= 0, got %d", c.Cache.MaxSize)
	}

	// Sweep interval: 0 = no background sweep, negative = invalid
	if c.Cache.SweepIntervalMS < 0 {
		return errors.Newf("cache.sweep_interval_ms must be >= 0, got %d", c.Cache.SweepIntervalMS)
	}

	// Settle delay: 0 = verify immediately, negative = invalid
	if c.Update.SettleDelayMS < 0 {
		return errors.Newf("update.settle_delay_ms must be >= 0, got %d", c.Update.SettleDelayMS)
	}

	return nil
}
