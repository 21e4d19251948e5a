package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/specpaint/internal/engine"
	"github.com/olivier-w/specpaint/internal/media"
)

type tickMsg time.Time
type animFrameMsg time.Time
type renderDoneMsg engine.Result
type playbackEndedMsg struct {
	done <-chan struct{}
}
type fileChangedMsg struct{}
type reloadedMsg struct {
	buf  media.Buffer
	meta media.Metadata
	err  error
}
type exportedMsg struct {
	path string
	err  error
}

const animFPS = 30

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func animCmd() tea.Cmd {
	return tea.Tick(time.Second/animFPS, func(t time.Time) tea.Msg {
		return animFrameMsg(t)
	})
}

func waitResult(ch <-chan engine.Result) tea.Cmd {
	return func() tea.Msg {
		return renderDoneMsg(<-ch)
	}
}

func checkDone(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return playbackEndedMsg{done: done}
	}
}

func waitFileChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return fileChangedMsg{}
	}
}

func reloadCmd(path string, maxBytes int64) tea.Cmd {
	return func() tea.Msg {
		if err := media.Validate(path, maxBytes); err != nil {
			return reloadedMsg{err: err}
		}
		buf, err := media.Decode(path)
		if err != nil {
			return reloadedMsg{err: err}
		}
		return reloadedMsg{buf: buf, meta: media.ReadMetadata(path)}
	}
}

func exportCmd(dest string, buf media.Buffer) tea.Cmd {
	return func() tea.Msg {
		return exportedMsg{path: dest, err: media.WriteWAV(dest, buf)}
	}
}
