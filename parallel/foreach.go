// Package parallel contains the bounded parallel loops used for feature
// extraction and evaluation.
package parallel

import "sync"

// ForEach runs body for every i in [0, length) with at most limit goroutines
// in flight. It returns once every body call has returned.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = Threads()
	}
	if limit > length {
		limit = length
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// ForChunks splits [0, length) into at most limit contiguous chunks and runs
// body once per chunk. Cheap per-row work goes here instead of ForEach.
func ForChunks(length, limit int, body func(from, to int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = Threads()
	}
	if limit > length {
		limit = length
	}
	size := (length + limit - 1) / limit
	ForEach(limit, limit, func(n int) {
		from := n * size
		to := from + size
		if to > length {
			to = length
		}
		if from < to {
			body(from, to)
		}
	})
}
