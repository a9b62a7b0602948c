package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codebeauty/scanview/internal/progress"
)

func completedCoordinator(t *testing.T) (*progress.Coordinator, []progress.Stage) {
	t.Helper()
	stages := []progress.Stage{
		{Label: "Parsing repository"},
		{Label: "Static analysis", Weight: "heavy", Subtitles: []string{"a", "b"}},
	}
	c, err := progress.New(stages, progress.Config{}, nil)
	assert.NoError(t, err)
	c.SignalReady()
	c.StageTick(1)
	c.StageTick(1)
	assert.True(t, c.Done())
	return c, stages
}

func TestBuildRecord(t *testing.T) {
	c, stages := completedCoordinator(t)
	started := time.Now().Add(-3 * time.Second)

	r := BuildRecord("http://audit.local/jobs/42/status", started, stages, c.Snapshot())
	assert.Equal(t, 1, r.Version)
	assert.Equal(t, "http://audit.local/jobs/42/status", r.Job)
	assert.False(t, r.Cancelled)
	assert.Len(t, r.Stages, 2)
	assert.Equal(t, "Static analysis", r.Stages[1].Label)
	assert.Equal(t, "heavy", r.Stages[1].Weight)
	assert.Equal(t, 2, r.Stages[1].Subtitles)
	assert.Equal(t, 2, r.Stages[1].Revealed)
	assert.True(t, r.Stages[0].Done)
	assert.NotEmpty(t, r.Duration)
}

func TestBuildRecordCancelled(t *testing.T) {
	stages := []progress.Stage{
		{Label: "Parsing repository"},
		{Label: "Static analysis", Subtitles: []string{"a", "b"}},
	}
	c, err := progress.New(stages, progress.Config{}, nil)
	assert.NoError(t, err)
	c.SignalReady()
	c.StageTick(1)
	c.Cancel()

	r := BuildRecord("job", time.Now(), stages, c.Snapshot())
	assert.True(t, r.Cancelled)
	assert.Equal(t, 1, r.Stages[1].Revealed)
}

func TestWriteAndReadRecord(t *testing.T) {
	c, stages := completedCoordinator(t)
	dir := t.TempDir()

	r := BuildRecord("job", time.Now(), stages, c.Snapshot())
	assert.NoError(t, WriteRecord(dir, r))

	loaded, err := ReadRecord(dir)
	assert.NoError(t, err)
	assert.Equal(t, r.Job, loaded.Job)
	assert.Equal(t, r.Stages, loaded.Stages)

	info, _ := os.Stat(filepath.Join(dir, "scan.json"))
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadRecordMissing(t *testing.T) {
	_, err := ReadRecord(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanDir(t *testing.T) {
	base := t.TempDir()
	dir, err := ScanDir(base)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "scan-"))

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
