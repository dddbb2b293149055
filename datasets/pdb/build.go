package pdb

import "log/slog"

import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/parallel"

// BuildOptions controls Build
type BuildOptions struct {
	Threads int  // workers extracting features, 0 means parallel.Threads()
	Filter  bool // drop rows that fail Problem.Sane
}

// BuildStats counts rows that did not make it into the dataset
type BuildStats struct {
	Skipped  int // a needed field was missing
	Filtered int // implausible physical values
}

type row struct {
	x    []float64
	y    float64
	keep bool
}

// Build extracts the problem's features from every entry, keeping entry order.
func Build(entries []Entry, p Problem, opt BuildOptions) (ds datasets.Dataset, stats BuildStats) {
	var rows = make([]row, len(entries))
	var sane = make([]bool, len(entries))
	parallel.ForChunks(len(entries), opt.Threads, func(from, to int) {
		for i := from; i < to; i++ {
			x, y, ok := p.Extract(entries[i])
			rows[i] = row{x: x, y: y, keep: ok}
			sane[i] = ok && (!opt.Filter || p.Sane(x, y))
		}
	})
	for i, r := range rows {
		if !r.keep {
			stats.Skipped++
			continue
		}
		if !sane[i] {
			stats.Filtered++
			slog.Debug("implausible row dropped", "id", entries[i].ID(), "problem", p.String(), "target", r.y)
			continue
		}
		ds.Append(entries[i].ID(), r.x, r.y)
	}
	return
}
