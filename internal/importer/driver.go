package importer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Target is one entry in a batch import.
type Target struct {
	Path   string
	UserID int64
}

// Processor imports a single directory or file.
type Processor interface {
	Process(ctx context.Context, path string, userID int64) (*Result, error)
}

// BatchResult pairs one batch input with its outcome. Exactly one of Result
// and Err is set.
type BatchResult struct {
	Target Target
	Result *Result
	Err    error
}

// RunBatch fans the targets out across at most limit concurrent imports and
// returns one result per input, in input order, regardless of individual
// failures. Once ctx is cancelled no new imports start; targets that never
// ran report the context error.
func RunBatch(ctx context.Context, proc Processor, targets []Target, limit int) []BatchResult {
	if limit < 1 {
		limit = 1
	}

	results := make([]BatchResult, len(targets))

	g := &errgroup.Group{}
	g.SetLimit(limit)

	for i, target := range targets {
		results[i].Target = target
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := proc.Process(ctx, target.Path, target.UserID)
			results[i] = BatchResult{Target: target, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
