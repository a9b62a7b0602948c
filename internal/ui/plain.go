// Package ui renders scan progress as plain lines when stdout is not a
// terminal. It owns real timers and feeds them to the coordinator as
// events, all on one goroutine.
package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/codebeauty/scanview/internal/progress"
)

type Runner struct {
	coord *progress.Coordinator
	out   io.Writer
}

func NewRunner(coord *progress.Coordinator, out io.Writer) *Runner {
	return &Runner{coord: coord, out: out}
}

// Run blocks until the scan display completes or ctx is cancelled. The
// ready channel must be closed (or sent on) once the external job
// finishes.
func (r *Runner) Run(ctx context.Context, ready <-chan struct{}) error {
	c := r.coord
	stages := c.Stages()
	fmt.Fprintf(r.out, "Preparing scan: %s\n", stages[0].Label)

	cfg := c.Config()
	var floorCh <-chan time.Time
	if cfg.GateFloor > 0 {
		floorCh = time.After(cfg.GateFloor)
	}

	for c.State() == progress.StateGating {
		select {
		case <-ctx.Done():
			c.Cancel()
			return ctx.Err()
		case <-floorCh:
			floorCh = nil
			c.GateElapsed()
		case <-ready:
			ready = nil
			c.SignalReady()
		}
	}

	fmt.Fprintf(r.out, "[%3d%%] %s: done\n", c.Percent(), stages[0].Label)
	r.reportDoneStages()

	if c.Done() {
		fmt.Fprintf(r.out, "Scan complete\n")
		return nil
	}

	// One shared interval: all stage tickers started at the same instant
	// with the same period, so each fire advances every unfinished stage.
	if cfg.SubtitleTick <= 0 {
		for c.State() == progress.StateRunning {
			r.tickAll()
		}
	} else {
		tick := time.NewTicker(cfg.SubtitleTick)
		defer tick.Stop()
		for c.State() == progress.StateRunning {
			select {
			case <-ctx.Done():
				c.Cancel()
				return ctx.Err()
			case <-tick.C:
				r.tickAll()
			}
		}
	}

	fmt.Fprintf(r.out, "Scan complete\n")
	return nil
}

func (r *Runner) tickAll() {
	c := r.coord
	stages := c.Stages()
	for i := 1; i < len(stages); i++ {
		snap := c.Snapshot()
		if snap.Stages[i].Done {
			continue
		}
		c.StageTick(i)
		revealed := c.Revealed(i)
		if len(revealed) > 0 {
			fmt.Fprintf(r.out, "[%3d%%] %s: %s\n", c.Percent(), stages[i].Label, revealed[len(revealed)-1])
		}
		if c.Snapshot().Stages[i].Done {
			fmt.Fprintf(r.out, "[%3d%%] %s: done\n", c.Percent(), stages[i].Label)
		}
	}
}

// reportDoneStages prints stages that were done the moment Running
// started (no subtitles configured).
func (r *Runner) reportDoneStages() {
	c := r.coord
	stages := c.Stages()
	snap := c.Snapshot()
	for i := 1; i < len(stages); i++ {
		if snap.Stages[i].Done && len(stages[i].Subtitles) == 0 {
			fmt.Fprintf(r.out, "[%3d%%] %s: done\n", c.Percent(), stages[i].Label)
		}
	}
}
