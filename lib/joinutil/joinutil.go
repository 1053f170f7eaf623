// Package joinutil provides the fail-fast concurrent join that backs
// every "fetch a list, then enrich each element" operation in the
// weblearn scraper.
package joinutil

import "context"

type result struct {
	index int
	err   error
}

// TryJoinAll runs fn(ctx, 0) ... fn(ctx, n-1) concurrently and returns
// nil once every call has succeeded, or the first error otherwise.
//
// "first" is decided by input index: when several calls have already
// failed by the time the combinator wakes up, the one with the lowest
// index wins and the rest are dropped. Calls still in flight when an
// error is returned are abandoned, not cancelled; whatever side
// effects they already triggered complete on their own and their
// results go nowhere. The result channel is buffered to n so the
// abandoned goroutines never leak.
//
// Callers that need the outputs write them into their own slice at
// index i inside fn, which preserves input order no matter the
// completion order.
func TryJoinAll(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}

	results := make(chan result, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			results <- result{index: i, err: fn(ctx, i)}
		}(i)
	}

	done := 0
	for done < n {
		batch := []result{<-results}
		// drain everything else already delivered so that ties within
		// the same wakeup resolve by input index, not channel order
	drain:
		for {
			select {
			case r := <-results:
				batch = append(batch, r)
			default:
				break drain
			}
		}

		if err := lowestIndexFailure(batch); err != nil {
			return err
		}
		done += len(batch)
	}

	return nil
}

// resolves the failures delivered within one wakeup of the combinator:
// the error with the lowest input index wins, the rest are dropped
func lowestIndexFailure(batch []result) error {
	var firstErr error
	firstIndex := -1
	for _, r := range batch {
		if r.err == nil {
			continue
		}
		if firstIndex == -1 || r.index < firstIndex {
			firstIndex = r.index
			firstErr = r.err
		}
	}
	return firstErr
}

// TryJoin3 is the fixed-arity variant of TryJoinAll with identical
// semantics, for the one call site that joins three unlike fetches.
func TryJoin3(ctx context.Context, f0, f1, f2 func(ctx context.Context) error) error {
	return TryJoinAll(ctx, 3, func(ctx context.Context, i int) error {
		switch i {
		case 0:
			return f0(ctx)
		case 1:
			return f1(ctx)
		default:
			return f2(ctx)
		}
	})
}
