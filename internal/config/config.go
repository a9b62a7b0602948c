package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codebeauty/scanview/internal/progress"
)

type Config struct {
	Version  int            `json:"version"`
	Defaults DefaultsConfig `json:"defaults"`
	Stages   []StageConfig  `json:"stages,omitempty"`
}

type DefaultsConfig struct {
	GateFloorMs    int    `json:"gateFloorMs"`    // minimum visible duration of the parsing stage
	SubtitleTickMs int    `json:"subtitleTickMs"` // interval between subtitle reveals
	FocusRotateMs  int    `json:"focusRotateMs"`  // interval between highlight rotations
	PollMs         int    `json:"pollMs"`         // job status poll interval
	OutputDir      string `json:"outputDir"`
}

// StageConfig mirrors progress.Stage in the config file. An empty Stages
// list falls back to the stock breakdown.
type StageConfig struct {
	Label     string   `json:"label"`
	Weight    string   `json:"weight,omitempty"`
	Subtitles []string `json:"subtitles,omitempty"`
}

func NewDefaults() *Config {
	return &Config{
		Version: 1,
		Defaults: DefaultsConfig{
			GateFloorMs:    1200,
			SubtitleTickMs: 900,
			FocusRotateMs:  2500,
			PollMs:         1000,
			OutputDir:      "./scans",
		},
	}
}

// Validate rejects values that would misconfigure the coordinator's
// timers, so a bad file fails before the scan starts.
func (c *Config) Validate() error {
	d := c.Defaults
	for _, iv := range []struct {
		name string
		ms   int
	}{
		{"gateFloorMs", d.GateFloorMs},
		{"subtitleTickMs", d.SubtitleTickMs},
		{"focusRotateMs", d.FocusRotateMs},
	} {
		if iv.ms < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", iv.name, iv.ms)
		}
	}
	if d.PollMs <= 0 {
		return fmt.Errorf("pollMs must be positive, got %d", d.PollMs)
	}
	for i, s := range c.Stages {
		if s.Label == "" {
			return fmt.Errorf("stage %d: label is required", i)
		}
	}
	return nil
}

// Tuning converts the millisecond knobs into the coordinator config.
func (c *Config) Tuning() progress.Config {
	return progress.Config{
		GateFloor:    time.Duration(c.Defaults.GateFloorMs) * time.Millisecond,
		SubtitleTick: time.Duration(c.Defaults.SubtitleTickMs) * time.Millisecond,
		FocusRotate:  time.Duration(c.Defaults.FocusRotateMs) * time.Millisecond,
	}
}

// PollInterval returns the job status poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Defaults.PollMs) * time.Millisecond
}

// StageModel resolves the configured stages, falling back to the stock
// breakdown when the config file defines none.
func (c *Config) StageModel() []progress.Stage {
	if len(c.Stages) == 0 {
		return progress.DefaultStages()
	}
	stages := make([]progress.Stage, len(c.Stages))
	for i, s := range c.Stages {
		stages[i] = progress.Stage{Label: s.Label, Weight: s.Weight, Subtitles: s.Subtitles}
	}
	return stages
}

func globalConfigDir() string {
	home := os.Getenv("HOME")
	macOSPath := filepath.Join(home, "Library", "Application Support", "scanview")
	if _, err := os.Stat(macOSPath); err == nil {
		return macOSPath
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scanview")
	}
	return macOSPath
}

func GlobalConfigPath() string {
	return filepath.Join(globalConfigDir(), "config.json")
}

func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	// Security: refuse to load config writable by group/others
	if info.Mode().Perm()&0o022 != 0 {
		return nil, fmt.Errorf("config %s has unsafe permissions %o (writable by group/others)", path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ProjectOverrides holds per-project tuning loaded from .scanview.json.
type ProjectOverrides struct {
	GateFloorMs    *int    `json:"gateFloorMs,omitempty"`
	SubtitleTickMs *int    `json:"subtitleTickMs,omitempty"`
	FocusRotateMs  *int    `json:"focusRotateMs,omitempty"`
	PollMs         *int    `json:"pollMs,omitempty"`
	OutputDir      *string `json:"outputDir,omitempty"`
}

// ProjectConfig represents a .scanview.json file in the project root.
type ProjectConfig struct {
	Defaults *ProjectOverrides `json:"defaults,omitempty"`
	Stages   []StageConfig     `json:"stages,omitempty"`
}

// LoadProjectConfig reads .scanview.json from dir. Returns nil if not found.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, ".scanview.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	var pc ProjectConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pc, nil
}

// MergeWithProject applies project-level overrides to the global config.
func MergeWithProject(cfg *Config, pc *ProjectConfig) {
	if pc == nil {
		return
	}
	if len(pc.Stages) > 0 {
		cfg.Stages = pc.Stages
	}
	d := pc.Defaults
	if d == nil {
		return
	}
	if d.GateFloorMs != nil {
		cfg.Defaults.GateFloorMs = *d.GateFloorMs
	}
	if d.SubtitleTickMs != nil {
		cfg.Defaults.SubtitleTickMs = *d.SubtitleTickMs
	}
	if d.FocusRotateMs != nil {
		cfg.Defaults.FocusRotateMs = *d.FocusRotateMs
	}
	if d.PollMs != nil {
		cfg.Defaults.PollMs = *d.PollMs
	}
	if d.OutputDir != nil {
		cfg.Defaults.OutputDir = *d.OutputDir
	}
}

func Load() (*Config, error) {
	path := GlobalConfigPath()
	cfg, err := LoadFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefaults(), nil
		}
		return nil, fmt.Errorf("global config: %w", err)
	}
	return cfg, nil
}

// LoadMerged loads the global config, then merges project-level overrides
// from the .scanview.json in the given directory.
func LoadMerged(projectDir string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	pc, err := LoadProjectConfig(projectDir)
	if err != nil {
		return nil, fmt.Errorf("project config: %w", err)
	}
	MergeWithProject(cfg, pc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return atomicWrite(path, data, 0o600)
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
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
