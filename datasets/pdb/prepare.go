package pdb

import "context"
import "log/slog"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/logging"

// Source says where Prepare finds the problem's rows
type Source struct {
	Path  string // gzip JSON lines export
	Cache string // msgpack feature cache, empty disables caching
	BuildOptions
}

// Prepare returns the dataset of problem p. A cache built for p from the same
// export with the same filter is used as is, otherwise the export is loaded
// and the features are extracted and cached. When the export is missing the
// cache is trusted without the export check.
func Prepare(ctx context.Context, src Source, p Problem) (datasets.Dataset, error) {
	var key = CacheKey{Filter: src.Filter}
	if src.Cache != "" {
		if _, err := os.Stat(src.Path); err == nil {
			if key.Source, err = Fingerprint(src.Path, src.Threads); err != nil {
				return datasets.Dataset{}, err
			}
		} else {
			slog.Warn("export missing, feature cache not checked against it", "path", src.Path)
		}
		ds, err := ReadCache(src.Cache, p, key)
		if err == nil {
			slog.Info("feature cache", "path", src.Cache, "problem", p.String(), "rows", ds.Len())
			return ds, nil
		}
		slog.Info("feature cache unusable, rebuilding", "path", src.Cache, logging.Err(err))
	}

	entries, stats, err := Load(ctx, src.Path, src.Threads)
	if err != nil {
		return datasets.Dataset{}, err
	}
	slog.Info("loaded", "path", src.Path, "lines", stats.Lines, "entries", stats.Entries, "malformed", stats.Malformed)

	ds, built := Build(entries, p, src.BuildOptions)
	slog.Info("features", "problem", p.String(), "rows", ds.Len(), "skipped", built.Skipped, "filtered", built.Filtered)
	if ds.Len() == 0 {
		return ds, errors.Wrapf(datasets.ErrEmpty, "no usable %s rows in %q", p, src.Path)
	}

	if src.Cache != "" {
		if err := WriteCache(src.Cache, p, key, ds); err != nil {
			return ds, err
		}
	}
	return ds, nil
}
