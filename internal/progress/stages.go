package progress

// Stage describes one unit of the scan work breakdown. Stage 0 is the
// gating stage: it blocks on the external job becoming ready and carries
// no subtitles. Every later stage reveals its subtitles one per tick.
type Stage struct {
	Label     string
	Weight    string // display-only, e.g. "heavy"; not used by the aggregator
	Subtitles []string
}

// DefaultStages is the stock work breakdown for a code-audit scan.
func DefaultStages() []Stage {
	return []Stage{
		{Label: "Parsing repository"},
		{
			Label:  "Dependency audit",
			Weight: "heavy",
			Subtitles: []string{
				"Resolving lockfiles",
				"Checking advisories",
				"Scoring transitive risk",
			},
		},
		{
			Label: "Static analysis",
			Subtitles: []string{
				"Building call graphs",
				"Running lint passes",
				"Collecting findings",
			},
		},
		{
			Label: "Secret detection",
			Subtitles: []string{
				"Scanning blobs",
				"Verifying matches",
			},
		},
		{
			Label: "Report assembly",
			Subtitles: []string{
				"Aggregating scores",
			},
		},
	}
}
