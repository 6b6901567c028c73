package lineindex

import "sync"

// scanParallel splits data into contiguous chunks at arbitrary byte
// boundaries, scans them concurrently and concatenates the per-chunk offset
// lists in chunk order. Terminators are single bytes, so no chunk boundary
// can split one, and line starts are derived from the previous entry.
func scanParallel(data []byte, workers int) []int {
	chunkSize := (len(data) + workers - 1) / workers
	if chunkSize == 0 {
		return nil
	}
	parts := make([][]int, 0, workers)
	for start := 0; start < len(data); start += chunkSize {
		parts = append(parts, nil)
	}

	var wg sync.WaitGroup
	for i := range parts {
		start := i * chunkSize
		end := min(start+chunkSize, len(data))
		wg.Go(func() {
			parts[i] = scan(data[start:end], start, nil)
		})
	}
	wg.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	terms := make([]int, 0, total+1)
	for _, p := range parts {
		terms = append(terms, p...)
	}
	return terms
}
