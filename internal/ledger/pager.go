// Package ledger implements cursor-based pagination against the external
// payment ledger. One bounded loop serves every report endpoint, so the
// termination rules live in exactly one place.
package ledger

import (
	"context"
	"fmt"
)

// MaxPageSize is the largest page the external API will serve per call.
const MaxPageSize = 100

// Page is one page of ledger records plus the provider's continuation flag.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// Fetcher retrieves a single page starting after the given cursor. An empty
// cursor means "from the beginning". pageSize is always in [1, MaxPageSize].
type Fetcher[T any] func(ctx context.Context, startingAfter string, pageSize int64) (Page[T], error)

// Options bounds a FetchAll run.
type Options[T any] struct {
	// StartingAfter resumes pagination after this record id.
	StartingAfter string
	// Budget caps the total number of records fetched. Must be positive.
	Budget int
	// LastID extracts a record's identifier, used as the next cursor.
	LastID func(T) string
}

// Result is the concatenated record set plus resume state for the caller.
type Result[T any] struct {
	Items []T
	// HasMore reports whether the ledger had further records when the run
	// stopped, either because the provider said so or because the budget
	// ran out mid-stream.
	HasMore bool
	// NextStartingAfter is the cursor to resume from, empty when done.
	NextStartingAfter string
}

// FetchAll drains pages from fetch until the provider reports no more data,
// a page comes back empty, or the record budget is exhausted. Pages are
// fetched strictly sequentially: each cursor depends on the previous page's
// last record. An empty page is terminal even when the provider's has-more
// flag claims otherwise, so a pagination anomaly cannot loop forever.
func FetchAll[T any](ctx context.Context, fetch Fetcher[T], opts Options[T]) (Result[T], error) {
	if opts.Budget <= 0 {
		return Result[T]{}, fmt.Errorf("ledger: budget must be positive, got %d", opts.Budget)
	}
	if opts.LastID == nil {
		return Result[T]{}, fmt.Errorf("ledger: LastID extractor is required")
	}

	var out Result[T]
	cursor := opts.StartingAfter
	remaining := opts.Budget

	for remaining > 0 {
		pageSize := int64(remaining)
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}

		page, err := fetch(ctx, cursor, pageSize)
		if err != nil {
			return Result[T]{}, err
		}
		if len(page.Items) == 0 {
			return out, nil
		}

		out.Items = append(out.Items, page.Items...)
		remaining -= len(page.Items)
		cursor = opts.LastID(page.Items[len(page.Items)-1])

		if !page.HasMore {
			return out, nil
		}
	}

	out.HasMore = true
	out.NextStartingAfter = cursor
	return out, nil
}
