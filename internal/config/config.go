package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the TOML config file for ambient app configuration.
// This is distinct from the synced display settings, whose JSON wire format
// is shared between running bar instances.
const ConfigFileName = "config.toml"

// Config represents ambient deckline configuration in TOML format.
type Config struct {
	// DataDir holds logs, the message bus and persisted settings.
	// Default: ~/.deckline
	DataDir string `toml:"data_dir"`

	// BusDir overrides the message bus directory. Default: <data_dir>/bus
	BusDir string `toml:"bus_dir"`

	// LogLevel is the minimum log level: "debug", "info", "warn", "error"
	LogLevel string `toml:"log_level"`

	// Debug enables file logging even without an explicit log dir
	Debug bool `toml:"debug"`

	// ZellijBin is the zellij binary used for focus/tab actions. Default: "zellij"
	ZellijBin string `toml:"zellij_bin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir(),
		LogLevel:  "info",
		ZellijBin: "zellij",
	}
}

// Load reads the config file, falling back to defaults when the file is
// missing or a field is unset. A malformed file is an error; a missing one
// is not.
func Load() (Config, error) {
	cfg := Default()

	path := filepath.Join(configDir(), ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var fileCfg Config
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, err
	}

	if fileCfg.DataDir != "" {
		cfg.DataDir = expandHome(fileCfg.DataDir)
	}
	if fileCfg.BusDir != "" {
		cfg.BusDir = expandHome(fileCfg.BusDir)
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.ZellijBin != "" {
		cfg.ZellijBin = fileCfg.ZellijBin
	}
	cfg.Debug = fileCfg.Debug

	return cfg, nil
}

// EffectiveBusDir returns the bus directory, applying the default when unset.
func (c Config) EffectiveBusDir() string {
	if c.BusDir != "" {
		return c.BusDir
	}
	return filepath.Join(c.DataDir, "bus")
}

// SettingsPath returns the path of the persisted display settings JSON.
func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.json")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "deckline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deckline")
	}
	return filepath.Join(home, ".config", "deckline")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".deckline")
	}
	return filepath.Join(home, ".deckline")
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
