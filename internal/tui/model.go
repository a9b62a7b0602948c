package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codebeauty/scanview/internal/output"
	"github.com/codebeauty/scanview/internal/progress"
)

// Options holds the inputs needed to drive the scan view.
type Options struct {
	Coordinator *progress.Coordinator
	Job         string // status URL or sentinel path, for the scan record
	OutputDir   string // where scan.json lands; empty disables the record
	CancelWatch context.CancelFunc
}

// Model is the top-level BubbleTea model for `scanview watch`. All timer
// intervals live here as tea.Tick commands; each fire is handed to the
// coordinator as one event.
type Model struct {
	coord *progress.Coordinator
	opts  Options

	spinner   spinner.Model
	width     int
	height    int
	startedAt time.Time

	running    bool // tick commands for the concurrent stages are armed
	recordPath string
	recordErr  error
	Err        error
	quitting   bool
}

func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary

	return Model{
		coord:     opts.Coordinator,
		opts:      opts,
		spinner:   s,
		startedAt: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if floor := m.coord.Config().GateFloor; floor > 0 {
		cmds = append(cmds, tea.Tick(floor, func(time.Time) tea.Msg {
			return gateElapsedMsg{}
		}))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.Quit) {
			return m.teardown(), tea.Quit
		}
		if key.Matches(msg, Keys.QuitDone) && m.coord.Done() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case JobFailedMsg:
		m.Err = msg.Err
		return m.teardown(), tea.Quit

	case JobReadyMsg:
		m.coord.SignalReady()
		return m.maybeStartRunning()

	case gateElapsedMsg:
		m.coord.GateElapsed()
		return m.maybeStartRunning()

	case stageTickMsg:
		if m.coord.StageTick(msg.Stage) {
			return m, m.stageTickCmd(msg.Stage)
		}
		return m, nil

	case focusTickMsg:
		m.coord.RotateFocus()
		if m.coord.State() == progress.StateRunning {
			return m, m.focusTickCmd()
		}
		return m, nil

	case ScanCompleteMsg:
		return m, m.writeRecordCmd()

	case recordWrittenMsg:
		m.recordPath = msg.Path
		m.recordErr = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.coord.State() == progress.StateGating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// maybeStartRunning arms the per-stage and focus timers once, on the
// Gating → Running transition.
func (m Model) maybeStartRunning() (tea.Model, tea.Cmd) {
	if m.running || m.coord.State() == progress.StateGating {
		return m, nil
	}
	m.running = true

	var cmds []tea.Cmd
	snap := m.coord.Snapshot()
	for i := 1; i < len(snap.Stages); i++ {
		if !snap.Stages[i].Done {
			cmds = append(cmds, m.stageTickCmd(i))
		}
	}
	if m.coord.State() == progress.StateRunning && len(snap.Stages) > 1 {
		cmds = append(cmds, m.focusTickCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) stageTickCmd(stage int) tea.Cmd {
	return tea.Tick(m.coord.Config().SubtitleTick, func(time.Time) tea.Msg {
		return stageTickMsg{Stage: stage}
	})
}

func (m Model) focusTickCmd() tea.Cmd {
	return tea.Tick(m.coord.Config().FocusRotate, func(time.Time) tea.Msg {
		return focusTickMsg{}
	})
}

func (m Model) writeRecordCmd() tea.Cmd {
	if m.opts.OutputDir == "" {
		return nil
	}
	job := m.opts.Job
	outputDir := m.opts.OutputDir
	startedAt := m.startedAt
	stages := m.coord.Stages()
	snap := m.coord.Snapshot()
	return func() tea.Msg {
		dir, err := output.ScanDir(outputDir)
		if err != nil {
			return recordWrittenMsg{Err: err}
		}
		r := output.BuildRecord(job, startedAt, stages, snap)
		if err := output.WriteRecord(dir, r); err != nil {
			return recordWrittenMsg{Err: err}
		}
		return recordWrittenMsg{Path: dir}
	}
}

// teardown cancels the coordinator and the watcher; safe to call twice.
func (m Model) teardown() Model {
	m.quitting = true
	m.coord.Cancel()
	if m.opts.CancelWatch != nil {
		m.opts.CancelWatch()
	}
	return m
}
