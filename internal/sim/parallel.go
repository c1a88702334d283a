package sim

import (
	"context"
	"fmt"
	"sync"
)

// Run executes every run for n steps of dt. Results come back in run order;
// the first failing run's error is returned.
func (b *Batch) Run(ctx context.Context, n int, dt float64) ([]*Result, error) {
	results := make([]*Result, b.numRuns)
	errs := make([]error, b.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < b.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := b.seedStart + int64(idx)
			d, err := b.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}

			results[idx], err = RunDrone(ctx, d, n, dt)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
			}
			b.logger.Debug("batch run finished", "run", idx, "seed", seed, "steps", d.Steps())
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
