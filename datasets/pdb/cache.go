package pdb

import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "github.com/vmihailenco/msgpack/v5"

import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/parallel"

// ErrProblemMismatch is returned when a cache was built for another problem.
var ErrProblemMismatch = errors.New("feature cache built for another problem")

// ErrStaleCache is returned when a cache was built with other options or from another export.
var ErrStaleCache = errors.New("feature cache is stale")

// fingerprintBlock is the unit of the parallel export hash
const fingerprintBlock = 4 << 20

// CacheKey identifies how a cached matrix was built
type CacheKey struct {
	Filter bool   // Build dropped implausible rows
	Source string // Fingerprint of the export, empty skips the check
}

type cacheFile struct {
	Problem string      `msgpack:"problem"`
	Width   int         `msgpack:"width"`
	Filter  bool        `msgpack:"filter"`
	Source  string      `msgpack:"source"`
	X       [][]float64 `msgpack:"x"`
	Y       []float64   `msgpack:"y"`
	IDs     []string    `msgpack:"ids"`
}

// Fingerprint hashes the raw bytes of the export at path.
func Fingerprint(path string, threads int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open dataset %q", path)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", errors.Wrapf(err, "stat dataset %q", path)
	}
	sum, err := parallel.HashReaderAt(f, info.Size(), fingerprintBlock, threads)
	if err != nil {
		return "", errors.Wrapf(err, "fingerprint dataset %q", path)
	}
	return sum, nil
}

// WriteCache stores an engineered feature matrix as msgpack.
func WriteCache(path string, p Problem, key CacheKey, ds datasets.Dataset) error {
	if err := ds.Check(); err != nil {
		return err
	}
	data, err := msgpack.Marshal(cacheFile{
		Problem: p.String(),
		Width:   p.Width(),
		Filter:  key.Filter,
		Source:  key.Source,
		X:       ds.X,
		Y:       ds.Y,
		IDs:     ds.IDs,
	})
	if err != nil {
		return errors.Wrap(err, "encode feature cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "feature cache directory for %q", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write feature cache %q", path)
	}
	return nil
}

// ReadCache loads a feature matrix written by WriteCache for the same problem
// and key. A key without Source accepts a cache of any export.
func ReadCache(path string, p Problem, key CacheKey) (datasets.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return datasets.Dataset{}, errors.Wrapf(err, "read feature cache %q", path)
	}
	var c cacheFile
	if err := msgpack.Unmarshal(data, &c); err != nil {
		return datasets.Dataset{}, errors.Wrapf(err, "decode feature cache %q", path)
	}
	if c.Problem != p.String() || c.Width != p.Width() {
		return datasets.Dataset{}, errors.Wrapf(ErrProblemMismatch, "%q holds %s/%d, want %s/%d", path, c.Problem, c.Width, p, p.Width())
	}
	if c.Filter != key.Filter {
		return datasets.Dataset{}, errors.Wrapf(ErrStaleCache, "%q built with filter %v, want %v", path, c.Filter, key.Filter)
	}
	if key.Source != "" && c.Source != key.Source {
		return datasets.Dataset{}, errors.Wrapf(ErrStaleCache, "%q built from another export", path)
	}
	var ds = datasets.Dataset{X: c.X, Y: c.Y, IDs: c.IDs}
	if err := ds.Check(); err != nil {
		return datasets.Dataset{}, errors.Wrapf(err, "feature cache %q", path)
	}
	if ds.Len() > 0 && ds.Width() != c.Width {
		return datasets.Dataset{}, errors.Wrapf(datasets.ErrShape, "feature cache %q rows have width %d", path, ds.Width())
	}
	return ds, nil
}
