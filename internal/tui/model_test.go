package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/codebeauty/scanview/internal/output"
	"github.com/codebeauty/scanview/internal/progress"
)

func testStages() []progress.Stage {
	return []progress.Stage{
		{Label: "Parsing repository"},
		{Label: "Dependency audit", Subtitles: []string{"a", "b"}},
		{Label: "Static analysis", Subtitles: []string{"c"}},
	}
}

func newTestModel(t *testing.T, cfg progress.Config, opts Options) Model {
	t.Helper()
	coord, err := progress.New(testStages(), cfg, nil)
	assert.NoError(t, err)
	opts.Coordinator = coord
	return NewModel(opts)
}

func TestGatingView(t *testing.T) {
	m := newTestModel(t, progress.Config{}, Options{})
	view := m.View()
	assert.Contains(t, view, "Preparing scan")
	assert.Contains(t, view, "Parsing repository")
}

func TestInitArmsGateFloorTimer(t *testing.T) {
	m := newTestModel(t, progress.Config{GateFloor: time.Second}, Options{})
	assert.NotNil(t, m.Init())
}

func TestJobReadyStartsRunning(t *testing.T) {
	m := newTestModel(t, progress.Config{SubtitleTick: time.Millisecond, FocusRotate: time.Millisecond}, Options{})

	result, cmd := m.Update(JobReadyMsg{})
	m = result.(Model)
	assert.Equal(t, progress.StateRunning, m.coord.State())
	assert.NotNil(t, cmd, "stage and focus timers must be armed")

	view := m.View()
	assert.Contains(t, view, "Scanning")
	assert.Contains(t, view, "Dependency audit")
	assert.Contains(t, view, "25%")
}

func TestGateFloorBlocksRunning(t *testing.T) {
	m := newTestModel(t, progress.Config{GateFloor: time.Second}, Options{})

	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	assert.Equal(t, progress.StateGating, m.coord.State())

	result, cmd := m.Update(gateElapsedMsg{})
	m = result.(Model)
	assert.Equal(t, progress.StateRunning, m.coord.State())
	assert.NotNil(t, cmd)
}

func TestStageTickRearmsUntilStageDone(t *testing.T) {
	m := newTestModel(t, progress.Config{SubtitleTick: time.Millisecond}, Options{})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)

	// Stage 1 has two subtitles: first tick re-arms, second does not.
	result, cmd := m.Update(stageTickMsg{Stage: 1})
	m = result.(Model)
	assert.NotNil(t, cmd)

	result, cmd = m.Update(stageTickMsg{Stage: 1})
	m = result.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"a", "b"}, m.coord.Revealed(1))
}

func TestViewShowsLatestSubtitle(t *testing.T) {
	m := newTestModel(t, progress.Config{SubtitleTick: time.Millisecond}, Options{})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	result, _ = m.Update(stageTickMsg{Stage: 1})
	m = result.(Model)

	assert.Contains(t, m.View(), "a")
}

func TestScanCompleteWritesRecord(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, progress.Config{SubtitleTick: time.Millisecond}, Options{
		Job:       "http://audit.local/jobs/1/status",
		OutputDir: dir,
	})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	for _, ev := range []stageTickMsg{{Stage: 1}, {Stage: 2}, {Stage: 1}} {
		result, _ = m.Update(ev)
		m = result.(Model)
	}
	assert.True(t, m.coord.Done())

	result, cmd := m.Update(ScanCompleteMsg{})
	m = result.(Model)
	assert.NotNil(t, cmd)

	msg := cmd()
	written, ok := msg.(recordWrittenMsg)
	assert.True(t, ok)
	assert.NoError(t, written.Err)

	r, err := output.ReadRecord(written.Path)
	assert.NoError(t, err)
	assert.Equal(t, "http://audit.local/jobs/1/status", r.Job)
	assert.False(t, r.Cancelled)

	result, _ = m.Update(written)
	m = result.(Model)
	view := m.View()
	assert.Contains(t, view, "Scan complete")
	assert.Contains(t, view, written.Path)
}

func TestScanCompleteWithoutOutputDir(t *testing.T) {
	m := newTestModel(t, progress.Config{}, Options{})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)

	_, cmd := m.Update(ScanCompleteMsg{})
	assert.Nil(t, cmd)
}

func TestCtrlCCancels(t *testing.T) {
	cancelled := false
	m := newTestModel(t, progress.Config{}, Options{
		CancelWatch: func() { cancelled = true },
	})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)

	result, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = result.(Model)
	assert.NotNil(t, cmd) // tea.Quit
	assert.True(t, m.coord.Cancelled())
	assert.True(t, cancelled)

	// Further ticks mutate nothing.
	before := m.coord.Snapshot()
	result, _ = m.Update(stageTickMsg{Stage: 1})
	m = result.(Model)
	assert.Equal(t, before, m.coord.Snapshot())
}

func TestQQuitsOnlyWhenDone(t *testing.T) {
	m := newTestModel(t, progress.Config{}, Options{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd, "q is inert while the scan runs")

	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	for _, ev := range []stageTickMsg{{Stage: 1}, {Stage: 2}, {Stage: 1}} {
		r, _ := m.Update(ev)
		m = r.(Model)
	}
	assert.True(t, m.coord.Done())

	result, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = result.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestJobFailedQuitsWithError(t *testing.T) {
	m := newTestModel(t, progress.Config{}, Options{})
	result, cmd := m.Update(JobFailedMsg{Err: assert.AnError})
	m = result.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, assert.AnError, m.Err)
	assert.Contains(t, m.View(), "Error:")
}

func TestFocusTickRotatesAndRearms(t *testing.T) {
	m := newTestModel(t, progress.Config{FocusRotate: time.Millisecond}, Options{})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	assert.Equal(t, 1, m.coord.Focus())

	result, cmd := m.Update(focusTickMsg{})
	m = result.(Model)
	assert.Equal(t, 2, m.coord.Focus())
	assert.NotNil(t, cmd)
}

func TestFocusTickStopsAfterComplete(t *testing.T) {
	m := newTestModel(t, progress.Config{}, Options{})
	result, _ := m.Update(JobReadyMsg{})
	m = result.(Model)
	for _, ev := range []stageTickMsg{{Stage: 1}, {Stage: 2}, {Stage: 1}} {
		r, _ := m.Update(ev)
		m = r.(Model)
	}

	focus := m.coord.Focus()
	result, cmd := m.Update(focusTickMsg{})
	m = result.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, focus, m.coord.Focus())
}
