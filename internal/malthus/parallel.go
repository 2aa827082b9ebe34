package malthus

import "sync"

// SweepParallel is Sweep fanned out over up to workers goroutines. Each
// worker owns a contiguous chunk of result slots, so the result is
// identical to Sweep's. On failure the error of the lowest failing index is
// returned.
func SweepParallel(name string, values []float64, template Parameters, probe Probe, workers int) (SweepResult, error) {
	res, variants, err := prepareSweep(name, values, template, probe)
	if err != nil {
		return SweepResult{}, err
	}

	errs := make([]error, len(variants))
	parallelFor(len(variants), workers, func(start, end int) {
		for i := start; i < end; i++ {
			res.Points[i], errs[i] = runPoint(res.Param, values[i], variants[i], probe)
		}
	})

	for _, err := range errs {
		if err != nil {
			return SweepResult{}, err
		}
	}
	return res, nil
}

// parallelFor splits [0, n) into at most workers chunks.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
