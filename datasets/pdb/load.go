package pdb

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/neurlang/crystal/parallel"
)

// MaxLineSize is the longest record line accepted by Load.
const MaxLineSize = 16 << 20

const chunkLines = 1024

// LoadStats counts what happened while loading.
type LoadStats struct {
	Lines     int // non-blank lines read
	Entries   int // lines decoded into an Entry
	Malformed int // lines that were not a JSON object
}

// Load reads a gzip compressed file with one JSON object per line. Malformed
// lines are skipped and counted, they don't fail the load. Entry order is file order.
func Load(ctx context.Context, path string, threads int) ([]Entry, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, errors.Wrapf(err, "open dataset %q", path)
	}
	defer f.Close()

	entries, stats, err := LoadReader(ctx, f, threads)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "load dataset %q", path)
	}
	return entries, stats, nil
}

// LoadReader is Load over an already opened gzip stream.
func LoadReader(ctx context.Context, r io.Reader, threads int) ([]Entry, LoadStats, error) {
	var stats LoadStats
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, stats, errors.Wrap(err, "gzip header")
	}
	defer zr.Close()

	if threads <= 0 {
		threads = parallel.Threads()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	var (
		chunks    []*[]Entry
		chunk     [][]byte
		malformed atomic.Int64
	)
	dispatch := func(lines [][]byte) {
		var slot = new([]Entry)
		chunks = append(chunks, slot)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var out = make([]Entry, 0, len(lines))
			for _, line := range lines {
				var e Entry
				if err := json.Unmarshal(line, &e); err != nil || e == nil {
					malformed.Add(1)
					continue
				}
				out = append(out, e)
			}
			*slot = out
			return nil
		})
	}

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++
		chunk = append(chunk, bytes.Clone(line))
		if len(chunk) == chunkLines {
			if gctx.Err() != nil {
				break
			}
			dispatch(chunk)
			chunk = nil
		}
	}
	if len(chunk) > 0 {
		dispatch(chunk)
	}
	var scanErr = scanner.Err()
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if scanErr != nil {
		return nil, stats, errors.Wrap(scanErr, "read records")
	}

	var entries = make([]Entry, 0, stats.Lines)
	for _, c := range chunks {
		entries = append(entries, *c...)
	}
	stats.Entries = len(entries)
	stats.Malformed = int(malformed.Load())

	slog.Debug("pdb records decoded", "lines", stats.Lines, "entries", stats.Entries, "malformed", stats.Malformed)
	return entries, stats, nil
}
