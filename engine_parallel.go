package gdlens

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jward/gdlens/internal/project"
	"github.com/jward/gdlens/internal/store"
)

func (e *Engine) workerCount(items int) int {
	n := e.workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if items > 0 {
		n = min(n, items)
	}
	return max(n, 1)
}

// loadSourcesParallel reads and parses files on a bounded worker pool.
// Each worker owns its slot in the result slice; per-file errors are
// collected rather than cancelling the group.
func (e *Engine) loadSourcesParallel(ctx context.Context, root string, paths []string) ([]*source, []error) {
	loaded := make([]*source, len(paths))
	failed := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount(len(paths)))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := loadSource(root, p)
			if err != nil {
				failed[i] = fmt.Errorf("index %s: %w", p, err)
				return nil
			}
			loaded[i] = src
			return nil
		})
	}
	_ = g.Wait()

	var sources []*source
	var errs []error
	for i := range paths {
		if failed[i] != nil {
			errs = append(errs, failed[i])
		}
		if loaded[i] != nil {
			sources = append(sources, loaded[i])
		}
	}
	sortSources(sources)
	return sources, errs
}

// buildBatches fills one BatchedStore per script. Models are frozen once
// the project is built, so workers may read them concurrently.
func (e *Engine) buildBatches(ctx context.Context, p *project.Project, ids map[string]int64) ([]*store.BatchedStore, error) {
	paths := p.Paths()
	batches := make([]*store.BatchedStore, len(paths))
	if !e.useParallel {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			b, err := e.buildBatch(p, path, ids[path])
			if err != nil {
				return nil, fmt.Errorf("batch %s: %w", path, err)
			}
			batches[i] = b
		}
		return batches, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount(len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := e.buildBatch(p, path, ids[path])
			if err != nil {
				return fmt.Errorf("batch %s: %w", path, err)
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}
