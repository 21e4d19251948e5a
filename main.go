package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/olivier-w/specpaint/internal/config"
	"github.com/olivier-w/specpaint/internal/media"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: specpaint <file> (supported: %s)\n", media.SupportedExtsList())
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Reject bad input before anything is decoded or analysed.
	if err := media.Validate(path, cfg.MaxFileBytes); err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	dir, err := config.Dir(cfg.ConfigDir)
	if err != nil {
		log.WithError(err).Warn("settings will not be persisted")
		dir = ""
	}
	var saved config.Settings
	if dir != "" {
		s, ok, err := config.LoadSettings(dir)
		if err != nil {
			log.WithError(err).Warn("ignoring stored settings")
		} else if ok {
			saved = s
		}
	}
	blockSize := cfg.ResolveBlockSize(saved)
	log.WithFields(logrus.Fields{
		"block_size": blockSize,
		"backend":    cfg.Backend,
		"debounce":   cfg.Debounce,
	}).Info("starting")

	opts := openOptions{
		cfg:         cfg,
		blockSize:   blockSize,
		settingsDir: dir,
		log:         log,
	}
	program := tea.NewProgram(newStartupModel(path, opts), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if sm, ok := final.(startupModel); ok && sm.err != nil {
		return sm.err
	}
	return nil
}

// newLogger writes to SPECPAINT_LOG when set. The terminal belongs to the
// TUI, so otherwise everything is discarded.
func newLogger(cfg config.Config) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if cfg.LogFile == "" {
		return log, func() {}, nil
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("SPECPAINT_LOG_LEVEL: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return log, func() { f.Close() }, nil
}
