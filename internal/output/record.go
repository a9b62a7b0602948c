package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/codebeauty/scanview/internal/progress"
)

// Record is the scan.json written next to a finished scan: what was
// watched, how long each part of the display ran, and when.
type Record struct {
	Version     int           `json:"version"`
	Job         string        `json:"job"` // status URL or sentinel path
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt time.Time     `json:"completedAt"`
	Duration    string        `json:"duration"`
	Platform    string        `json:"platform"`
	Cancelled   bool          `json:"cancelled,omitempty"`
	Stages      []StageRecord `json:"stages"`
}

type StageRecord struct {
	Label     string `json:"label"`
	Weight    string `json:"weight,omitempty"`
	Subtitles int    `json:"subtitles"`
	Revealed  int    `json:"revealed"`
	Done      bool   `json:"done"`
}

// BuildRecord snapshots a coordinator into a record.
func BuildRecord(job string, startedAt time.Time, stages []progress.Stage, snap progress.Snapshot) *Record {
	completedAt := time.Now()
	sRecords := make([]StageRecord, len(stages))
	for i, s := range stages {
		sRecords[i] = StageRecord{
			Label:     s.Label,
			Weight:    s.Weight,
			Subtitles: len(s.Subtitles),
			Revealed:  snap.Stages[i].Revealed,
			Done:      snap.Stages[i].Done,
		}
	}
	return &Record{
		Version:     1,
		Job:         job,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt).Round(time.Millisecond).String(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Cancelled:   snap.State != progress.StateComplete,
		Stages:      sRecords,
	}
}

// ScanDir creates a fresh timestamped directory for one scan's artifacts.
func ScanDir(baseDir string) (string, error) {
	dirName := fmt.Sprintf("scan-%d", time.Now().Unix())
	path := filepath.Join(baseDir, dirName)
	if err := os.MkdirAll(path, 0o700); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	return path, nil
}

func WriteRecord(dir string, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return AtomicWrite(filepath.Join(dir, "scan.json"), data, 0o600)
}

func ReadRecord(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scan.json"))
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing scan.json: %w", err)
	}
	return &r, nil
}

func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".scanview-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
