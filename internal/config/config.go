// Package config loads runtime configuration from the environment and
// persists the analysis settings between runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olivier-w/specpaint/internal/glitch"
	"github.com/olivier-w/specpaint/internal/stft"
)

// DefaultBlockSize is used when neither the settings file nor the
// environment picks one.
const DefaultBlockSize = 2048

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Analysis
	BlockSize int // 0 when unset
	Backend   stft.Backend

	// Scheduling
	Debounce time.Duration

	// Input
	MaxFileBytes int64

	// Logging
	LogFile  string
	LogLevel string

	// Settings file location
	ConfigDir string

	// Glitch knob defaults
	Glitch glitch.Params
}

// Load reads configuration from environment variables with sane defaults.
// It fails only on values that cannot be honored.
func Load() (Config, error) {
	d := glitch.Defaults()
	cfg := Config{
		BlockSize:    envInt("SPECPAINT_BLOCK_SIZE", 0),
		Debounce:     time.Duration(envInt("SPECPAINT_DEBOUNCE_MS", 400)) * time.Millisecond,
		MaxFileBytes: int64(envInt("SPECPAINT_MAX_FILE_MB", 200)) << 20,
		LogFile:      envStr("SPECPAINT_LOG", ""),
		LogLevel:     envStr("SPECPAINT_LOG_LEVEL", "info"),
		ConfigDir:    envStr("SPECPAINT_CONFIG_DIR", ""),
		Glitch: glitch.Params{
			StutterChance: clamp01(envFloat("SPECPAINT_STUTTER_CHANCE", d.StutterChance)),
			StutterMs:     envFloat("SPECPAINT_STUTTER_MS", d.StutterMs),
			DropChance:    clamp01(envFloat("SPECPAINT_DROP_CHANCE", d.DropChance)),
			DropMs:        envFloat("SPECPAINT_DROP_MS", d.DropMs),
		},
	}

	if cfg.BlockSize != 0 && !stft.ValidBlockSize(cfg.BlockSize) {
		return Config{}, fmt.Errorf("SPECPAINT_BLOCK_SIZE: %w: %d (supported: %s)",
			stft.ErrInvalidBlockSize, cfg.BlockSize, stft.BlockSizesList())
	}
	if raw := os.Getenv("SPECPAINT_BLOCK_SIZE"); raw != "" && cfg.BlockSize == 0 {
		return Config{}, fmt.Errorf("SPECPAINT_BLOCK_SIZE: %w: %q", stft.ErrInvalidBlockSize, raw)
	}

	backend, err := stft.ParseBackend(envStr("SPECPAINT_FFT", string(stft.BackendGonum)))
	if err != nil {
		return Config{}, fmt.Errorf("SPECPAINT_FFT: %w", err)
	}
	cfg.Backend = backend

	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	return cfg, nil
}

// ResolveBlockSize applies the precedence defaults < persisted < env.
func (c Config) ResolveBlockSize(saved Settings) int {
	if c.BlockSize != 0 {
		return c.BlockSize
	}
	if stft.ValidBlockSize(saved.BlockSize) {
		return saved.BlockSize
	}
	return DefaultBlockSize
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
