// Package config holds the formbridge engine configuration: viper loading
// with defaults and env binding, TOML persistence with rotating backups, and
// an fsnotify hot-reload watcher.
//
// Custom validation rules are predicates (Go functions) and therefore not
// file-loadable; they are supplied programmatically through the engine's
// dependency set, not through this package.
package config

import "fmt"

// Config is the root formbridge configuration.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Update UpdateConfig `mapstructure:"update"`
}

// EngineConfig configures the orchestrator.
type EngineConfig struct {
	EnableValidation    bool     `mapstructure:"enable_validation"`     // run the structural validator in preconditions (default: true)
	EnableErrorRecovery bool     `mapstructure:"enable_error_recovery"` // attach recovery strategies to classified errors (default: true)
	DebugMode           bool     `mapstructure:"debug_mode"`            // per-phase debug logging; -vvv implies it (default: false)
	MaxRetryAttempts    int      `mapstructure:"max_retry_attempts"`    // suggested retry ceiling surfaced to callers (default: 3)
	TimeoutMS           int64    `mapstructure:"timeout_ms"`            // per-operation deadline; 0 = no timeout (default: 30000)
	PerformanceLogging  bool     `mapstructure:"performance_logging"`   // log per-phase timings at info level (default: false)
	StrictTypeChecking  bool     `mapstructure:"strict_type_checking"`  // treat discarded entities as precondition failures (default: false)
	FeatureFlags        []string `mapstructure:"feature_flags"`         // open-ended feature toggles
}

// CacheConfig configures the result cache.
// Values <= 0 fall back to: ExpiryMS=300000, MaxSize=64, SweepIntervalMS=30000.
type CacheConfig struct {
	ExpiryMS        int64 `mapstructure:"expiry_ms"`         // entry lifetime (default: 300000)
	MaxSize         int   `mapstructure:"max_size"`          // entry count bound (default: 64)
	SweepIntervalMS int64 `mapstructure:"sweep_interval_ms"` // background sweep period (default: 30000)
}

// UpdateConfig configures the updater.
type UpdateConfig struct {
	SettleDelayMS int64 `mapstructure:"settle_delay_ms"` // wait before write verification (default: 50)
}

// HasFeature returns true if the named feature flag is set.
func (c *Config) HasFeature(name string) bool {
	for _, f := range c.Engine.FeatureFlags {
		if f == name {
			return true
		}
	}
	return false
}

// String returns a short representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Engine: {Validation: %t, TimeoutMS: %d}, Cache: {MaxSize: %d}}",
		c.Engine.EnableValidation, c.Engine.TimeoutMS, c.Cache.MaxSize)
}
