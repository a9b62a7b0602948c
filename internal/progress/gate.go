package progress

// gate holds the two conditions the gating stage waits on: the external
// job signalling ready, and the minimum display floor elapsing. Both bits
// only ever flip false→true.
type gate struct {
	ready   bool
	elapsed bool
}

func (g *gate) resolved() bool {
	return g.ready && g.elapsed
}
