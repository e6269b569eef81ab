package sammon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CK6170/Sammon-go/matrix"
)

// BestOf runs the mapping `runs` times and returns the result with the lowest
// stress. The first run uses opts as given; the others use random
// initialization seeded with opts.Seed+k. At most `workers` runs execute at
// once (0 means no limit).
//
// Individual runs are silent regardless of opts.Display. ctx is only checked
// before a run starts; a started run always completes.
func BestOf(ctx context.Context, x *matrix.Matrix, opts Options, runs, workers int) (*Result, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs %d: %w", runs, ErrInvalidInput)
	}
	base := opts.Seed
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}

	results := make([]*Result, runs)
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for k := 0; k < runs; k++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Display = DisplaySilent
			if k > 0 {
				o.Init = InitRandom
				o.Seed = base + uint64(k)
			}
			res, err := Map(x, o)
			if err != nil {
				return fmt.Errorf("run %d: %w", k, err)
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Stress < best.Stress {
			best = r
		}
	}
	return best, nil
}
