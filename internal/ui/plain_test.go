package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codebeauty/scanview/internal/progress"
)

func testStages() []progress.Stage {
	return []progress.Stage{
		{Label: "Parsing repository"},
		{Label: "Dependency audit", Subtitles: []string{"Resolving lockfiles", "Checking advisories"}},
		{Label: "Report assembly"},
	}
}

func TestRunnerCompletes(t *testing.T) {
	completed := false
	coord, err := progress.New(testStages(), progress.Config{}, func() { completed = true })
	assert.NoError(t, err)

	ready := make(chan struct{})
	close(ready)

	var buf bytes.Buffer
	r := NewRunner(coord, &buf)
	assert.NoError(t, r.Run(context.Background(), ready))
	assert.True(t, completed)
	assert.True(t, coord.Done())

	out := buf.String()
	assert.Contains(t, out, "Preparing scan: Parsing repository")
	assert.Contains(t, out, "Parsing repository: done")
	assert.Contains(t, out, "Dependency audit: Resolving lockfiles")
	assert.Contains(t, out, "Dependency audit: Checking advisories")
	assert.Contains(t, out, "Dependency audit: done")
	assert.Contains(t, out, "Report assembly: done")
	assert.Contains(t, out, "[100%]")
	assert.Contains(t, out, "Scan complete")
}

func TestRunnerHonoursGateFloor(t *testing.T) {
	coord, err := progress.New(testStages(), progress.Config{GateFloor: 30 * time.Millisecond}, nil)
	assert.NoError(t, err)

	ready := make(chan struct{})
	close(ready) // job is ready before the floor elapses

	var buf bytes.Buffer
	start := time.Now()
	assert.NoError(t, NewRunner(coord, &buf).Run(context.Background(), ready))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, coord.Done())
}

func TestRunnerCancellation(t *testing.T) {
	completed := false
	coord, err := progress.New(testStages(), progress.Config{}, func() { completed = true })
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = NewRunner(coord, &buf).Run(ctx, make(chan struct{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, coord.Cancelled())
	assert.False(t, completed)
	assert.NotContains(t, buf.String(), "Scan complete")
}

func TestRunnerGateOnlyBreakdown(t *testing.T) {
	coord, err := progress.New([]progress.Stage{{Label: "Parsing repository"}}, progress.Config{}, nil)
	assert.NoError(t, err)

	ready := make(chan struct{})
	close(ready)

	var buf bytes.Buffer
	assert.NoError(t, NewRunner(coord, &buf).Run(context.Background(), ready))
	assert.True(t, coord.Done())
	assert.Contains(t, buf.String(), "Scan complete")
}
