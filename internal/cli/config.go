package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user configuration loaded from the config file.
// All fields are optional; zero values fall back to built-in defaults.
type Config struct {
	Decode DecodeConfig `toml:"decode"`
	Server ServerConfig `toml:"server"`
}

// DecodeConfig configures default decode behavior.
type DecodeConfig struct {
	// Lenient downgrades unrecognized elements instead of failing.
	Lenient bool `toml:"lenient"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr      string `toml:"addr"`       // listen address, default ":8080"
	RedisAddr string `toml:"redis_addr"` // optional shared cache
	MongoURI  string `toml:"mongo_uri"`  // optional persistent archive
}

// configPath returns the config file location using XDG standard
// (~/.config/pagegraph/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file. A missing file yields the zero Config;
// a malformed file is an error so typos do not silently revert to defaults.
func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
