package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olivier-w/specpaint/internal/config"
	"github.com/olivier-w/specpaint/internal/engine"
	"github.com/olivier-w/specpaint/internal/media"
	"github.com/olivier-w/specpaint/internal/player"
	"github.com/olivier-w/specpaint/internal/ui"
)

const (
	phaseDecoding  = "decoding"
	phaseAnalysing = "analysing"
)

type openOptions struct {
	cfg         config.Config
	blockSize   int
	settingsDir string
	log         logrus.FieldLogger
}

// buildEditorModel decodes path, analyses it and returns the editor. Phase
// changes are reported on status without blocking.
func buildEditorModel(path string, o openOptions, status chan<- string) (ui.Model, error) {
	report := func(phase string) {
		if status == nil {
			return
		}
		select {
		case status <- phase:
		default:
		}
	}

	report(phaseDecoding)
	start := time.Now()
	buf, err := media.Decode(path)
	if err != nil {
		return ui.Model{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	o.log.WithFields(logrus.Fields{
		"path":        path,
		"sample_rate": buf.SampleRate,
		"samples":     len(buf.Samples),
		"elapsed":     time.Since(start),
	}).Info("decoded source")

	report(phaseAnalysing)
	sess, err := engine.NewSession(buf, o.blockSize, o.cfg.Backend, o.log)
	if err != nil {
		return ui.Model{}, err
	}
	sess.SetGlitch(o.cfg.Glitch)

	return ui.New(ui.Options{
		Session:     sess,
		Player:      player.New(),
		Path:        path,
		Metadata:    media.ReadMetadata(path),
		Debounce:    o.cfg.Debounce,
		MaxBytes:    o.cfg.MaxFileBytes,
		SettingsDir: o.settingsDir,
		Log:         o.log,
	}), nil
}
