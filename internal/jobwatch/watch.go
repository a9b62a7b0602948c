// Package jobwatch polls an external audit job until it reports ready.
// The rest of the program only ever sees a single ready notification;
// how the job publishes status (HTTP endpoint or sentinel file) is
// confined here.
package jobwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source answers one status probe. done=true means the job finished.
type Source interface {
	Check(ctx context.Context) (done bool, err error)
}

// HTTPSource polls a JSON status endpoint of the form
// {"status": "queued" | "running" | "complete" | "failed"}.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Check(ctx context.Context) (bool, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		// The job service may not be up yet; treat as not ready.
		return false, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, nil
	}
	switch body.Status {
	case "complete":
		return true, nil
	case "failed":
		return false, fmt.Errorf("audit job failed")
	default:
		return false, nil
	}
}

// FileSource reports ready once the sentinel file exists.
type FileSource struct {
	Path string
}

func (s *FileSource) Check(_ context.Context) (bool, error) {
	_, err := os.Stat(s.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Watcher polls a Source at a fixed interval and reports ready at most
// once.
type Watcher struct {
	src      Source
	interval time.Duration
}

func New(src Source, interval time.Duration) (*Watcher, error) {
	if src == nil {
		return nil, fmt.Errorf("source is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	return &Watcher{src: src, interval: interval}, nil
}

// Run polls until the source reports done, then calls onReady once and
// returns nil. It returns the source's error if a probe fails hard, or
// ctx.Err() on cancellation. The first probe happens immediately.
func (w *Watcher) Run(ctx context.Context, onReady func()) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		done, err := w.src.Check(ctx)
		if err != nil {
			return err
		}
		if done {
			onReady()
			return nil
		}

		tick := time.NewTicker(w.interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick.C:
				done, err := w.src.Check(ctx)
				if err != nil {
					return err
				}
				if done {
					onReady()
					return nil
				}
			}
		}
	})
	return g.Wait()
}
