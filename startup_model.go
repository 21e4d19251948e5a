package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/specpaint/internal/ui"
)

type startupResolvedMsg struct {
	model ui.Model
	err   error
}

type startupPhaseMsg string

// startupModel shows a spinner while the file is decoded and analysed, then
// hands the program over to the editor.
type startupModel struct {
	path     string
	opts     openOptions
	phase    string
	err      error
	width    int
	height   int
	spinner  spinner.Model
	statusCh chan string
}

func newStartupModel(path string, opts openOptions) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	return startupModel{
		path:     path,
		opts:     opts,
		phase:    phaseDecoding,
		spinner:  s,
		statusCh: make(chan string, 4),
	}
}

func (m startupModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForPhase(), openCmd(m.path, m.opts, m.statusCh))
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startupPhaseMsg:
		m.phase = string(msg)
		return m, m.waitForPhase()

	case startupResolvedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}

		cmds := []tea.Cmd{msg.model.Init()}
		if m.width > 0 || m.height > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: w, Height: h}
			})
		}
		return msg.model, tea.Batch(cmds...)

	case tea.KeyMsg:
		if startupIsQuit(msg) {
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}
	return m, nil
}

func (m startupModel) waitForPhase() tea.Cmd {
	if m.statusCh == nil {
		return nil
	}
	statusCh := m.statusCh
	return func() tea.Msg {
		phase, ok := <-statusCh
		if !ok {
			return nil
		}
		return startupPhaseMsg(phase)
	}
}

func (m startupModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("specpaint"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(startupErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	label := "Opening..."
	switch m.phase {
	case phaseDecoding:
		label = "Decoding..."
	case phaseAnalysing:
		label = "Analysing..."
	}
	b.WriteString("  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render(label))
	b.WriteString("\n\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func openCmd(path string, opts openOptions, statusCh chan string) tea.Cmd {
	return func() tea.Msg {
		defer close(statusCh)
		model, err := buildEditorModel(path, opts, statusCh)
		return startupResolvedMsg{model: model, err: err}
	}
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	startupErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)
