package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/pagemill/formbridge/errors"
)

const configFilePermissions = 0644

// Save writes the configuration to configPath as TOML, rotating backups of
// any previous file first.
func Save(cfg *Config, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to back up existing config")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, configFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", configPath)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before
// modifying the config file.
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // nothing to back up
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Rotate: drop .back3, .back2 -> .back3, .back1 -> .back2, current -> .back1
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read current config for backup")
	}
	if err := os.WriteFile(back1, data, configFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write .back1")
	}
	return nil
}
