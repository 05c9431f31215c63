package checksum

import "sync"

// Adler32MTDefaults are the tunable defaults for the multi-threaded
// Adler-32 path: below ThresholdBytes the checksum runs single-threaded
// regardless of NumThreads.
var Adler32MTDefaults = struct {
	NumThreads    int
	ThresholdBytes int
}{
	NumThreads:     2,
	ThresholdBytes: 100 * 1024,
}

// Adler32BytesMT computes the Adler-32 checksum of data, splitting the work
// across nThreads goroutines when len(data) is at least threshold bytes.
// Below the threshold, or when nThreads <= 1, it falls back to the
// single-threaded implementation — the result is identical either way.
func Adler32BytesMT(data []byte, nThreads int, threshold int) uint32 {
	if nThreads <= 1 || len(data) < threshold {
		return Adler32Bytes(data)
	}

	chunkSize := (len(data) + nThreads - 1) / nThreads
	if chunkSize == 0 {
		return Adler32Bytes(data)
	}

	type result struct {
		idx      int
		checksum uint32
		length   int
	}

	nChunks := (len(data) + chunkSize - 1) / chunkSize
	results := make([]result, nChunks)

	var wg sync.WaitGroup
	for i := 0; i < nChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}

		wg.Add(1)
		go func(idx, start, end int) {
			defer wg.Done()
			results[idx] = result{
				idx:      idx,
				checksum: Adler32Bytes(data[start:end]),
				length:   end - start,
			}
		}(i, start, end)
	}
	wg.Wait()

	combined := results[0].checksum
	for i := 1; i < len(results); i++ {
		combined = Adler32Combine(combined, results[i].checksum, int64(results[i].length))
	}

	return combined
}
