package ui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/olivier-w/specpaint/internal/config"
	"github.com/olivier-w/specpaint/internal/display"
	"github.com/olivier-w/specpaint/internal/engine"
	"github.com/olivier-w/specpaint/internal/mask"
	"github.com/olivier-w/specpaint/internal/media"
	"github.com/olivier-w/specpaint/internal/player"
	"github.com/olivier-w/specpaint/internal/stft"
	"github.com/olivier-w/specpaint/internal/util"
)

const (
	minRadius  = 1
	maxRadius  = 128
	radiusStep = 2
	valueStep  = 3

	statusTTL  = 5 * time.Second
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// Options configures a Model.
type Options struct {
	Session     *engine.Session
	Player      *player.Player
	Path        string
	Metadata    media.Metadata
	Debounce    time.Duration
	MaxBytes    int64
	SettingsDir string
	Log         logrus.FieldLogger
}

// Model is the Bubbletea model for the spectral editor.
type Model struct {
	session   *engine.Session
	coal      *engine.Coalescer
	results   chan engine.Result
	changes   chan struct{}
	stopWatch context.CancelFunc
	player    *player.Player
	log       logrus.FieldLogger

	path        string
	metadata    media.Metadata
	maxBytes    int64
	settingsDir string

	// brush, in spectral coordinates
	frame   int
	bin     int
	radius  float64
	value   float64
	mode    mask.Mode
	erase   bool
	drawing bool

	pane      Pane
	edited    engine.View
	diff      engine.View
	anim      *display.Animator
	animating bool
	audio     media.Buffer
	quality   engine.Quality
	lastSeq   uint64
	hasResult bool

	spinner    spinner.Model
	status     string
	statusErr  bool
	statusTime time.Time
	elapsed    time.Duration
	duration   time.Duration
	playing    string

	width    int
	height   int
	quitting bool
}

// New creates a Model and starts its resynthesis coalescer and source-file
// watcher.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	results := make(chan engine.Result, 1)
	m := Model{
		session:     opts.Session,
		results:     results,
		player:      opts.Player,
		log:         log,
		path:        opts.Path,
		metadata:    opts.Metadata,
		maxBytes:    opts.MaxBytes,
		settingsDir: opts.SettingsDir,
		radius:      8,
		value:       -12,
		anim:        display.NewAnimator(animFPS, 6.0, 1.0),
		spinner:     s,
	}
	m.coal = engine.NewCoalescer(opts.Debounce, engine.Render, func(r engine.Result) {
		// Called in Seq order under the coalescer's lock: keep only the newest.
		select {
		case <-results:
		default:
		}
		results <- r
	}, log)
	m.centerCursor()

	if opts.Path != "" {
		ctx, cancel := context.WithCancel(context.Background())
		changes := make(chan struct{}, 1)
		m.changes = changes
		m.stopWatch = cancel
		go func() {
			err := media.Watch(ctx, opts.Path, 250*time.Millisecond, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				log.WithError(err).Warn("source watcher stopped")
			}
		}()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	m.coal.SubmitNow(m.session.Snapshot())
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
		waitResult(m.results),
		waitFileChange(m.changes),
		tea.SetWindowTitle(m.metadata.Label()+" · specpaint"),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case renderDoneMsg:
		next := waitResult(m.results)
		if msg.Seq <= m.lastSeq {
			return m, next
		}
		m.lastSeq = msg.Seq
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Resynthesis failed: %v", msg.Err), true)
			return m, next
		}
		m.hasResult = true
		m.audio = msg.Audio
		m.edited = msg.Edited
		m.diff = msg.Diff
		m.quality = msg.Quality
		return m, tea.Batch(next, m.retarget())

	case animFrameMsg:
		if !m.animating {
			return m, nil
		}
		if m.anim.Step() {
			m.animating = false
			return m, nil
		}
		return m, animCmd()

	case tickMsg:
		if m.player != nil {
			m.elapsed = m.player.Position()
			m.duration = m.player.Duration()
			m.playing = m.player.Playing()
		}
		if m.status != "" && time.Since(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playbackEndedMsg:
		if m.player == nil || msg.done != m.player.Done() {
			return m, nil
		}
		m.player.Stop()
		m.playing = ""
		m.elapsed = 0
		return m, nil

	case fileChangedMsg:
		m.setStatus("Source changed, reloading...", false)
		return m, tea.Batch(reloadCmd(m.path, m.maxBytes), waitFileChange(m.changes))

	case reloadedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("reload failed")
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.err), true)
			return m, nil
		}
		if err := m.session.Reload(msg.buf); err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", err), true)
			return m, nil
		}
		m.log.WithFields(logrus.Fields{
			"path":     m.path,
			"duration": msg.buf.Duration(),
		}).Info("reloaded source")
		m.metadata = msg.meta
		m.clampCursor()
		m.setStatus("Reloaded "+m.metadata.Title, false)
		m.coal.SubmitNow(m.session.Snapshot())
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("export failed")
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.err), true)
		} else {
			m.log.WithField("path", msg.path).Info("exported")
			m.setStatus("Exported to "+msg.path, false)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.shutdown()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	key := msg.String()
	if df, db, ok := cursorDelta(key); ok {
		from := m.stroke()
		m.moveCursor(df, db)
		if m.drawing {
			m.session.PaintLine(from, m.stroke())
			m.submit()
		}
		return m, nil
	}

	switch key {
	case " ":
		m.session.Paint(m.stroke())
		m.submit()
	case "d":
		m.drawing = !m.drawing
		if m.drawing {
			m.session.Paint(m.stroke())
			m.submit()
		}
	case "e":
		m.erase = !m.erase
	case "m":
		m.mode = m.mode.Next()
		if m.mode == mask.Generative {
			m.value = math.Min(m.value, mask.MaxLoudness)
		}
	case "[":
		m.radius = math.Max(minRadius, m.radius-radiusStep)
	case "]":
		m.radius = math.Min(maxRadius, m.radius+radiusStep)
	case "-", "_":
		m.value = math.Max(mask.MinGain, m.value-valueStep)
	case "+", "=":
		hi := mask.MaxGain
		if m.mode == mask.Generative {
			hi = mask.MaxLoudness
		}
		m.value = math.Min(hi, m.value+valueStep)
	case "tab":
		m.pane = m.pane.Next()
		return m, m.retarget()
	case "b":
		return m, m.cycleBlockSize()
	case "x":
		m.session.ResetMask()
		m.submit()
	case "t":
		m.session.SetEditEnabled(!m.session.EditEnabled())
		m.submit()
	case "g":
		g := m.session.Glitch()
		g.Enabled = !g.Enabled
		m.session.SetGlitch(g)
		m.submit()
	case "o":
		return m, m.play(m.session.Source(), "original")
	case "p":
		if m.hasResult {
			return m, m.play(m.audio, "edited")
		}
	case "s":
		if m.player != nil {
			m.player.Stop()
			m.playing = ""
		}
	case "P":
		if m.player != nil {
			m.player.TogglePause()
		}
	case ",", ".":
		if m.player != nil && m.playing != "" {
			delta := -seekStep
			if key == "." {
				delta = seekStep
			}
			if err := m.player.Seek(delta); err != nil {
				m.setStatus(fmt.Sprintf("Seek failed: %v", err), true)
			}
			m.elapsed = m.player.Position()
		}
	case "9", "0":
		if m.player != nil {
			delta := -volumeStep
			if key == "0" {
				delta = volumeStep
			}
			m.player.AdjustVolume(delta)
			m.setStatus(fmt.Sprintf("Volume %.0f%%", m.player.Volume()*100), false)
		}
	case "w":
		if m.hasResult && m.path != "" {
			m.setStatus("Exporting...", false)
			return m, exportCmd(media.ExportPath(m.path), m.audio)
		}
	}
	return m, nil
}

func (m *Model) submit() {
	m.coal.Submit(m.session.Snapshot())
}

func (m *Model) stroke() mask.Stroke {
	return mask.Stroke{
		Frame:  m.frame,
		Bin:    m.bin,
		Radius: m.radius,
		Value:  m.value,
		Erase:  m.erase,
		Mode:   m.mode,
	}
}

// cursorStep keeps one key press at roughly one percent of each axis.
func cursorStep(n int) int {
	return max(1, n/100)
}

func (m *Model) moveCursor(df, db int) {
	frames, bins := m.session.Dimensions()
	m.frame += df * cursorStep(frames)
	m.bin += db * cursorStep(bins)
	m.clampCursor()
}

func (m *Model) clampCursor() {
	frames, bins := m.session.Dimensions()
	m.frame = max(0, min(m.frame, frames-1))
	m.bin = max(0, min(m.bin, bins-1))
}

func (m *Model) centerCursor() {
	frames, bins := m.session.Dimensions()
	m.frame = frames / 2
	m.bin = bins / 4
	m.clampCursor()
}

func (m *Model) cycleBlockSize() tea.Cmd {
	prev := m.session.Params()
	next := stft.NextBlockSize(prev.BlockSize)
	if err := m.session.SetBlockSize(next); err != nil {
		m.setStatus(fmt.Sprintf("Block size %d: %v", next, err), true)
		return nil
	}

	// Keep the cursor on the same time and frequency.
	p := m.session.Params()
	m.frame = m.frame * prev.HopSize / p.HopSize
	m.bin = m.bin * p.BlockSize / prev.BlockSize
	m.clampCursor()
	m.setStatus(fmt.Sprintf("Block size %d (mask reset)", next), false)

	if m.settingsDir != "" {
		s := config.Settings{BlockSize: next, Window: p.Window}
		if err := config.SaveSettings(m.settingsDir, s); err != nil {
			m.log.WithError(err).Warn("saving settings failed")
		}
	}
	m.submit()
	return nil
}

func (m *Model) play(buf media.Buffer, label string) tea.Cmd {
	if m.player == nil {
		return nil
	}
	if err := m.player.Play(buf, label); err != nil {
		m.setStatus(fmt.Sprintf("Playback failed: %v", err), true)
		return nil
	}
	m.playing = label
	m.elapsed = 0
	m.duration = m.player.Duration()
	return checkDone(m.player.Done())
}

// retarget points the animator at the visible pane's matrix.
func (m *Model) retarget() tea.Cmd {
	target := m.edited.Matrix
	if m.pane == PaneDiff {
		target = m.diff.Matrix
	}
	m.anim.SetTarget(target)
	if m.animating {
		return nil
	}
	m.animating = true
	return animCmd()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	m.statusTime = time.Now()
}

func (m *Model) shutdown() {
	if m.stopWatch != nil {
		m.stopWatch()
	}
	if m.player != nil {
		m.player.Close()
	}
	if m.coal != nil {
		m.coal.Close()
	}
}

func (m Model) pending() bool {
	if m.coal == nil {
		return false
	}
	issued, accepted := m.coal.Latest()
	return issued > accepted
}

func (m Model) cursor() display.Cursor {
	frames, bins := m.session.Dimensions()
	if frames == 0 || bins == 0 {
		return display.Cursor{}
	}
	return display.Cursor{
		X:    (float64(m.frame) + 0.5) / float64(frames),
		Y:    1 - (float64(m.bin)+0.5)/float64(bins),
		Show: true,
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 40 {
		w = 80
	}
	h := m.height
	if h < 20 {
		h = 24
	}
	paneW := w - labelWidth - 4
	paneH := max(3, (h-14)/2)

	p := m.session.Params()
	cur := m.cursor()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + headerStyle.Render("specpaint") + "  " + titleStyle.Render(m.metadata.Title) + "\n")
	if m.metadata.Artist != "" {
		b.WriteString("  " + artistStyle.Render(m.metadata.Artist) + "\n")
	}
	b.WriteString("  " + timeStyle.Render(fmt.Sprintf("%s  %d Hz  block %d  hop %d  %s",
		util.FormatDuration(m.session.Source().Duration()), p.SampleRate, p.BlockSize, p.HopSize, p.Window)) + "\n")
	b.WriteString("\n")

	b.WriteString("  " + statusStyle.Render("original") + "\n")
	b.WriteString(renderPane(m.session.OriginalView(), paneW, paneH, display.Heat, cur) + "\n")

	tabs := make([]string, 0, 2)
	for _, pane := range []Pane{PaneEdited, PaneDiff} {
		if pane == m.pane {
			tabs = append(tabs, activeTabStyle.Render(pane.String()))
		} else {
			tabs = append(tabs, statusStyle.Render(pane.String()))
		}
	}
	b.WriteString("  " + strings.Join(tabs, "  ") + "\n")
	view := m.edited
	if m.pane == PaneDiff {
		view = m.diff
	}
	if m.animating {
		view.Matrix = m.anim.Current()
	}
	b.WriteString(renderPane(view, paneW, paneH, m.pane.Palette(), cur) + "\n")
	b.WriteString("\n")

	frameTime := time.Duration(p.FrameSeconds(m.frame) * float64(time.Second))
	b.WriteString("  " + statusStyle.Render(fmt.Sprintf("%s  at %s, %s",
		renderBrush(m.mode, m.erase, m.radius, m.value),
		util.FormatDuration(frameTime), util.FormatHz(p.BinHz(m.bin)))))
	if m.drawing {
		b.WriteString("  " + activeTabStyle.Render("drawing"))
	}
	b.WriteString("\n")

	var flags []string
	if !m.session.EditEnabled() {
		flags = append(flags, "edit off")
	}
	if g := m.session.Glitch(); g.Enabled {
		flags = append(flags, fmt.Sprintf("glitch stutter %.0f%% drop %.0f%%", g.StutterChance*100, g.DropChance*100))
	}
	left := "waiting for first render"
	if m.hasResult {
		left = renderQuality(m.quality)
	}
	if len(flags) > 0 {
		left += "  [" + strings.Join(flags, ", ") + "]"
	}
	if m.pending() {
		left += "  " + m.spinner.View() + " resynthesizing"
	}
	b.WriteString("  " + statusStyle.Render(left) + "\n")

	if m.playing != "" {
		label := m.playing
		if m.player != nil && m.player.Paused() {
			label += " (paused)"
		}
		elapsed := util.FormatDuration(m.elapsed)
		total := util.FormatDuration(m.duration)
		barWidth := w - len(elapsed) - len(total) - len(label) - 10
		bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)
		b.WriteString(fmt.Sprintf("  ▶ %s  %s %s %s\n", label, timeStyle.Render(elapsed), bar, timeStyle.Render(total)))
	}

	if m.status != "" {
		style := helpStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	for _, line := range strings.Split(helpText(m.hasResult), "\n") {
		b.WriteString("  " + helpStyle.Render(line) + "\n")
	}

	out := b.String()
	if pad := m.height - lipgloss.Height(out); m.height > 0 && pad > 0 {
		out += strings.Repeat("\n", pad)
	}
	return out
}
