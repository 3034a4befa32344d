package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pagemill/formbridge/errors"
)

// ConfigFileName is the default config file name searched for in the
// working directory and under the user config dir.
const ConfigFileName = "formbridge.toml"

// Load reads the formbridge configuration from the standard locations:
// ./formbridge.toml, then $XDG_CONFIG_HOME/formbridge/formbridge.toml.
// Missing files are fine; defaults apply.
func Load() (*Config, error) {
	return LoadWithViper(initViper())
}

// LoadWithViper loads configuration from a provided viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

func initViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "formbridge"))
	}

	SetDefaults(v)
	BindSensitiveEnvVars(v)

	// A missing config file is not an error; defaults and env vars apply.
	_ = v.ReadInConfig()
	return v
}
