package tui

// Messages sent from the watcher goroutine to BubbleTea.
type JobReadyMsg struct{}

type JobFailedMsg struct {
	Err error
}

// ScanCompleteMsg is sent by the coordinator's completion callback.
type ScanCompleteMsg struct{}

// Timer-driven events consumed by the coordinator. Each carries enough
// to re-arm its own interval.
type gateElapsedMsg struct{}

type stageTickMsg struct {
	Stage int // 1-based among all stages, matching Coordinator.StageTick
}

type focusTickMsg struct{}

// recordWrittenMsg reports the scan record write attempted after
// completion.
type recordWrittenMsg struct {
	Path string
	Err  error
}
