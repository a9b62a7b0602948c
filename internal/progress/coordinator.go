// Package progress implements the staged scan-progress state machine.
//
// The coordinator owns no timers. The caller (TUI or plain renderer)
// schedules the intervals and delivers each timer fire as a discrete
// event: SignalReady and GateElapsed for the gating stage, StageTick for
// each subtitle reveal, RotateFocus for the highlight pointer. All events
// are applied on one goroutine; the coordinator is not safe for
// concurrent use.
package progress

import (
	"fmt"
	"time"
)

// State is the coordinator's lifecycle phase. Transitions are
// one-directional: Gating → Running → Complete.
type State int

const (
	StateGating State = iota
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateGating:
		return "gating"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Config holds the display tuning intervals.
type Config struct {
	GateFloor    time.Duration // minimum visible duration of the gating stage
	SubtitleTick time.Duration // interval between subtitle reveals
	FocusRotate  time.Duration // interval between highlight-pointer advances
}

// Validate rejects intervals that would make the timers misbehave.
// Zero is allowed everywhere (no floor, immediate ticks).
func (c Config) Validate() error {
	if c.GateFloor < 0 {
		return fmt.Errorf("gate floor must be non-negative, got %s", c.GateFloor)
	}
	if c.SubtitleTick < 0 {
		return fmt.Errorf("subtitle tick must be non-negative, got %s", c.SubtitleTick)
	}
	if c.FocusRotate < 0 {
		return fmt.Errorf("focus rotation must be non-negative, got %s", c.FocusRotate)
	}
	return nil
}

// StageState is the observable progress of one stage. For the gating
// stage Revealed is always 0 and Done tracks the gate.
type StageState struct {
	Revealed int
	Done     bool
}

// Snapshot is a pure projection of the coordinator's counters, safe to
// read between events.
type Snapshot struct {
	State   State
	Stages  []StageState
	Focus   int // 1-based index among concurrent stages; 0 when none highlighted
	Percent int
}

// Coordinator drives the staged scan indicator: one gating stage blocked
// on the external job, then all remaining stages advancing together until
// the last one joins.
type Coordinator struct {
	stages []Stage
	cfg    Config

	state     State
	gate      gate
	tickers   []ticker
	rotator   rotator
	cancelled bool

	onComplete func()
}

// New builds a coordinator over the given stages. Stage 0 is the gating
// stage; its subtitles, if any, are never revealed. onComplete may be nil.
func New(stages []Stage, cfg Config, onComplete func()) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("at least the gating stage is required")
	}

	c := &Coordinator{
		stages:     stages,
		cfg:        cfg,
		onComplete: onComplete,
	}
	c.tickers = make([]ticker, len(stages)-1)
	for i, s := range stages[1:] {
		c.tickers[i] = newTicker(len(s.Subtitles))
	}
	c.rotator = rotator{n: len(c.tickers)}

	// No floor configured means the floor is already satisfied; the gate
	// then waits on the ready signal alone.
	if cfg.GateFloor == 0 {
		c.gate.elapsed = true
	}
	return c, nil
}

// Stages returns the static work breakdown the coordinator was built with.
func (c *Coordinator) Stages() []Stage { return c.stages }

// Config returns the tuning the coordinator was built with.
func (c *Coordinator) Config() Config { return c.cfg }

// State returns the current lifecycle phase.
func (c *Coordinator) State() State { return c.state }

// Done reports whether the coordinator reached Complete.
func (c *Coordinator) Done() bool { return c.state == StateComplete }

// Cancelled reports whether Cancel was called before completion.
func (c *Coordinator) Cancelled() bool { return c.cancelled }

// SignalReady records that the external job finished. Monotone: repeat
// calls are no-ops, as are calls after cancellation.
func (c *Coordinator) SignalReady() {
	if c.cancelled || c.state != StateGating {
		return
	}
	c.gate.ready = true
	c.maybeRun()
}

// GateElapsed records that the minimum gating duration passed.
func (c *Coordinator) GateElapsed() {
	if c.cancelled || c.state != StateGating {
		return
	}
	c.gate.elapsed = true
	c.maybeRun()
}

// StageTick reveals the next subtitle of stage (1-based among all
// stages). It returns true when the stage still has subtitles left, i.e.
// the caller should schedule another tick for it.
func (c *Coordinator) StageTick(stage int) bool {
	if c.cancelled || c.state != StateRunning {
		return false
	}
	if stage < 1 || stage > len(c.tickers) {
		return false
	}
	t := &c.tickers[stage-1]
	if t.done {
		return false
	}
	t.tick()
	c.maybeJoin()
	return !t.done
}

// RotateFocus advances the highlighted-stage pointer. Only effective
// while Running; the pointer freezes the instant Running ends.
func (c *Coordinator) RotateFocus() {
	if c.cancelled || c.state != StateRunning {
		return
	}
	c.rotator.rotate()
}

// Cancel tears the coordinator down. Idempotent; after Cancel no event
// mutates state and onComplete never fires.
func (c *Coordinator) Cancel() {
	if c.state == StateComplete {
		return
	}
	c.cancelled = true
}

// Percent returns the overall completion percentage in [0,100].
func (c *Coordinator) Percent() int {
	return percent(c.gate.resolved(), c.tickers)
}

// Focus returns the highlighted concurrent stage (1-based), 0 when no
// stage has been highlighted yet.
func (c *Coordinator) Focus() int { return c.rotator.pointer }

// Snapshot projects the full observable state.
func (c *Coordinator) Snapshot() Snapshot {
	states := make([]StageState, len(c.stages))
	states[0] = StageState{Done: c.gate.resolved()}
	for i, t := range c.tickers {
		states[i+1] = StageState{Revealed: t.revealed, Done: t.done}
	}
	return Snapshot{
		State:   c.state,
		Stages:  states,
		Focus:   c.rotator.pointer,
		Percent: c.Percent(),
	}
}

// Revealed returns the subtitles of stage (1-based among all stages)
// revealed so far, in order.
func (c *Coordinator) Revealed(stage int) []string {
	if stage < 1 || stage > len(c.tickers) {
		return nil
	}
	n := c.tickers[stage-1].revealed
	return c.stages[stage].Subtitles[:n]
}

func (c *Coordinator) maybeRun() {
	if !c.gate.resolved() {
		return
	}
	c.state = StateRunning
	c.rotator.start()
	for i := range c.tickers {
		c.tickers[i].start()
	}
	// Stages with no subtitles are done the instant they start; with none
	// configured at all, Running collapses into Complete immediately.
	c.maybeJoin()
}

func (c *Coordinator) maybeJoin() {
	for _, t := range c.tickers {
		if !t.done {
			return
		}
	}
	c.state = StateComplete
	if c.onComplete != nil {
		c.onComplete()
	}
}
