package progress

// ticker counts subtitle reveals for one stage. Idle until start; a
// stage with no subtitles is done the moment it starts. Revealed never
// decreases and never exceeds total.
type ticker struct {
	total    int
	revealed int
	done     bool
}

func newTicker(total int) ticker {
	return ticker{total: total}
}

func (t *ticker) start() {
	if t.total == 0 {
		t.done = true
	}
}

func (t *ticker) tick() {
	if t.done {
		return
	}
	t.revealed++
	if t.revealed >= t.total {
		t.done = true
	}
}
