package progress

// rotator cycles the highlighted-stage pointer over the concurrent stages,
// 1-based so index 0 stays reserved for the gating stage. Purely cosmetic.
type rotator struct {
	n       int
	pointer int
}

func (r *rotator) start() {
	if r.n > 0 {
		r.pointer = 1
	}
}

func (r *rotator) rotate() {
	if r.n == 0 {
		return
	}
	r.pointer = r.pointer%r.n + 1
}
