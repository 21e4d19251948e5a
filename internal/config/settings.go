package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olivier-w/specpaint/internal/stft"
)

// SettingsKey identifies the analysis settings inside the settings file.
const SettingsKey = "specpaint.stft"

const settingsFile = "settings.json"

// Settings is the persisted analysis configuration. The sample rate always
// comes from the loaded file and is never stored.
type Settings struct {
	BlockSize int    `json:"blockSize"`
	Window    string `json:"window"`
}

// Validate checks both fields.
func (s Settings) Validate() error {
	if !stft.ValidBlockSize(s.BlockSize) {
		return fmt.Errorf("%w: %d", stft.ErrInvalidBlockSize, s.BlockSize)
	}
	return stft.ValidateWindow(s.Window)
}

// Dir returns the settings directory: override when set, otherwise
// <user config dir>/specpaint.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(base, "specpaint"), nil
}

func readAll(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// LoadSettings reads the persisted settings from dir. ok is false when
// nothing usable is stored; err is set only when the file exists but cannot
// be read or holds invalid values.
func LoadSettings(dir string) (s Settings, ok bool, err error) {
	entries, err := readAll(filepath.Join(dir, settingsFile))
	if err != nil {
		return Settings{}, false, err
	}
	raw, found := entries[SettingsKey]
	if !found {
		return Settings{}, false, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, false, fmt.Errorf("parsing %s: %w", SettingsKey, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, false, fmt.Errorf("ignoring stored %s: %w", SettingsKey, err)
	}
	return s, true, nil
}

// SaveSettings stores s in dir, keeping any other entries in the file.
func SaveSettings(dir string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, settingsFile)
	entries, err := readAll(path)
	if err != nil {
		// A corrupt file is replaced rather than blocking saves forever.
		entries = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	entries[SettingsKey] = raw

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return os.Rename(tmp, path)
}
