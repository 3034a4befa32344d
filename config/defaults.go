package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.enable_validation", true)
	v.SetDefault("engine.enable_error_recovery", true)
	v.SetDefault("engine.debug_mode", false)
	v.SetDefault("engine.max_retry_attempts", 3)
	v.SetDefault("engine.timeout_ms", 30000) // 30 second operation deadline
	v.SetDefault("engine.performance_logging", false)
	v.SetDefault("engine.strict_type_checking", false)

	// Cache defaults
	v.SetDefault("cache.expiry_ms", 300000) // 5 minute entry lifetime
	v.SetDefault("cache.max_size", 64)
	v.SetDefault("cache.sweep_interval_ms", 30000)

	// Update defaults
	v.SetDefault("update.settle_delay_ms", 50)
}

// BindSensitiveEnvVars explicitly binds configuration to environment
// variables for deployment overrides.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("engine.timeout_ms", "FORMBRIDGE_TIMEOUT_MS")
	v.BindEnv("engine.debug_mode", "FORMBRIDGE_DEBUG")
	v.BindEnv("cache.max_size", "FORMBRIDGE_CACHE_MAX_SIZE")
}

// Default returns the configuration with every default applied, without
// touching the filesystem.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always unmarshal; reaching here is a programming error.
		panic(err)
	}
	return cfg
}
