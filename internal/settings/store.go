package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/asheshgoplani/deckline/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompSettings)

// LoadState tracks whether the persisted settings file has been consulted.
// Saves are held while the load is still pending so a first write can never
// clobber a settings file that simply has not been read yet.
type LoadState int

const (
	// LoadPending means no load attempt has completed.
	LoadPending LoadState = iota
	// LoadApplied means the file was read and parsed.
	LoadApplied
	// LoadDefaulted means the file was absent or unreadable and defaults apply.
	LoadDefaulted
)

// Load reads persisted settings from path. It never returns an error: a
// missing or malformed file degrades to defaults, reported via the LoadState.
func Load(path string) (Settings, LoadState) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			storeLog.Warn("settings_load_failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return Default(), LoadDefaulted
	}

	s, err := Parse(data)
	if err != nil {
		storeLog.Warn("settings_parse_failed", slog.String("path", path), slog.String("error", err.Error()))
		return Default(), LoadDefaulted
	}
	return s, LoadApplied
}

// Save atomically persists settings to path, creating parent directories.
func Save(path string, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write settings tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}
