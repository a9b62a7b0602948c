package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codebeauty/scanview/internal/config"
	"github.com/codebeauty/scanview/internal/jobwatch"
	"github.com/codebeauty/scanview/internal/output"
	"github.com/codebeauty/scanview/internal/progress"
	"github.com/codebeauty/scanview/internal/tui"
	"github.com/codebeauty/scanview/internal/ui"
)

func newWatchCmd() *cobra.Command {
	var (
		statusURL string
		sentinel  string
		timeout   time.Duration
		plain     bool
		noRecord  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch an audit job and show staged scan progress",
		Long: `Watch polls a running audit job until it reports ready, then plays the
configured scan stages: the parsing stage completes first, the remaining
stages reveal their subtitles together until the last one finishes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (statusURL == "") == (sentinel == "") {
				return fmt.Errorf("exactly one of --status-url or --sentinel is required")
			}

			cfg, err := config.LoadMerged(".")
			if err != nil {
				return err
			}

			var src jobwatch.Source
			job := statusURL
			if statusURL != "" {
				src = &jobwatch.HTTPSource{URL: statusURL}
			} else {
				src = &jobwatch.FileSource{Path: sentinel}
				job = sentinel
			}
			watcher, err := jobwatch.New(src, cfg.PollInterval())
			if err != nil {
				return err
			}

			var (
				ctx    context.Context
				cancel context.CancelFunc
			)
			if timeout > 0 {
				ctx, cancel = context.WithTimeout(context.Background(), timeout)
			} else {
				ctx, cancel = context.WithCancel(context.Background())
			}
			defer cancel()

			outDir := cfg.Defaults.OutputDir
			if noRecord {
				outDir = ""
			}

			if !plain && tui.IsTTY() {
				return watchTUI(ctx, cancel, cfg, watcher, job, outDir)
			}
			return watchPlain(ctx, cfg, watcher, job, outDir)
		},
	}

	cmd.Flags().StringVar(&statusURL, "status-url", "", "audit job status endpoint (JSON {\"status\": ...})")
	cmd.Flags().StringVar(&sentinel, "sentinel", "", "file whose existence marks the job finished")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up waiting for the job after this long (0 = wait forever)")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain line output even on a terminal")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "skip writing scan.json")
	return cmd
}

// watchTUI runs the BubbleTea display. The watcher goroutine and the
// coordinator's completion callback both reach the event loop through
// program.Send.
func watchTUI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, watcher *jobwatch.Watcher, job, outDir string) error {
	var program *tea.Program

	coord, err := progress.New(cfg.StageModel(), cfg.Tuning(), func() {
		program.Send(tui.ScanCompleteMsg{})
	})
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Coordinator: coord,
		Job:         job,
		OutputDir:   outDir,
		CancelWatch: cancel,
	})
	program = tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		err := watcher.Run(ctx, func() {
			program.Send(tui.JobReadyMsg{})
		})
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out waiting for the audit job")
		}
		program.Send(tui.JobFailedMsg{Err: err})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := finalModel.(tui.Model); ok && m.Err != nil {
		return m.Err
	}
	return nil
}

// watchPlain runs the line renderer; the watcher and the renderer share
// an errgroup so a job failure tears the display down.
func watchPlain(ctx context.Context, cfg *config.Config, watcher *jobwatch.Watcher, job, outDir string) error {
	coord, err := progress.New(cfg.StageModel(), cfg.Tuning(), nil)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	ready := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, func() { close(ready) })
	})
	g.Go(func() error {
		return ui.NewRunner(coord, os.Stderr).Run(gctx, ready)
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out waiting for the audit job")
		}
		return err
	}

	if outDir == "" || !coord.Done() {
		return nil
	}
	dir, err := output.ScanDir(outDir)
	if err != nil {
		return err
	}
	r := output.BuildRecord(job, startedAt, coord.Stages(), coord.Snapshot())
	if err := output.WriteRecord(dir, r); err != nil {
		return fmt.Errorf("writing scan record: %w", err)
	}
	fmt.Fprintf(os.Stderr, "record: %s\n", dir)
	return nil
}
