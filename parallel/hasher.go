package parallel

import "crypto/sha256"
import "encoding/hex"
import "hash"
import "io"
import "sync"

import "github.com/pkg/errors"

// Hasher folds the digests of n numbered blocks into one sha256. Workers may
// put blocks in any order; they are consumed in index order as soon as the
// prefix is complete.
type Hasher struct {
	mut     sync.Mutex
	sha     hash.Hash
	ate     int
	pending map[int][sha256.Size]byte
	n       int
}

// NewHasher expects exactly n blocks
func NewHasher(n int) *Hasher {
	return &Hasher{
		sha:     sha256.New(),
		pending: make(map[int][sha256.Size]byte),
		n:       n,
	}
}

// Put stores the digest of block i. Each block may be put once.
func (h *Hasher) Put(i int, digest [sha256.Size]byte) error {
	h.mut.Lock()
	defer h.mut.Unlock()
	if i < 0 || i >= h.n {
		return errors.Errorf("block %d out of %d", i, h.n)
	}
	if _, dup := h.pending[i]; dup || i < h.ate {
		return errors.Errorf("duplicate block %d", i)
	}
	h.pending[i] = digest
	for {
		d, ok := h.pending[h.ate]
		if !ok {
			return nil
		}
		h.sha.Write(d[:])
		delete(h.pending, h.ate)
		h.ate++
	}
}

// Sum returns the combined digest once every block was put.
func (h *Hasher) Sum() ([sha256.Size]byte, error) {
	h.mut.Lock()
	defer h.mut.Unlock()
	var ret [sha256.Size]byte
	if h.ate != h.n {
		return ret, errors.Errorf("%d of %d blocks hashed", h.ate, h.n)
	}
	copy(ret[:], h.sha.Sum(nil))
	return ret, nil
}

// HashReaderAt hashes size bytes of r in blocks of blockSize, using up to
// threads workers, and returns the hex digest. The result depends on blockSize.
func HashReaderAt(r io.ReaderAt, size int64, blockSize int, threads int) (string, error) {
	if blockSize <= 0 {
		return "", errors.Errorf("block size %d", blockSize)
	}
	var blocks = int((size + int64(blockSize) - 1) / int64(blockSize))
	var h = NewHasher(blocks)
	var (
		mut      sync.Mutex
		firstErr error
	)
	ForEach(blocks, threads, func(i int) {
		off := int64(i) * int64(blockSize)
		buf := make([]byte, min(int64(blockSize), size-off))
		n, err := r.ReadAt(buf, off)
		if err == io.EOF && n == len(buf) {
			err = nil
		}
		if err == nil {
			err = h.Put(i, sha256.Sum256(buf))
		}
		if err != nil {
			mut.Lock()
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "block %d", i)
			}
			mut.Unlock()
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	sum, err := h.Sum()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
