package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type rec struct {
	ID string
}

// fakeLedger serves pages from a fixed record set the way the external API
// does: starting_after is exclusive, pages are capped at the requested size.
type fakeLedger struct {
	records []rec
	calls   int
	// hasMoreAlways forces the provider's continuation flag on even when a
	// page comes back empty, simulating a pagination anomaly.
	hasMoreAlways bool
}

func (f *fakeLedger) fetch(ctx context.Context, startingAfter string, pageSize int64) (Page[rec], error) {
	f.calls++

	start := 0
	if startingAfter != "" {
		for i, r := range f.records {
			if r.ID == startingAfter {
				start = i + 1
				break
			}
		}
	}

	end := start + int(pageSize)
	if end > len(f.records) {
		end = len(f.records)
	}

	page := Page[rec]{Items: f.records[start:end]}
	page.HasMore = end < len(f.records) || f.hasMoreAlways
	return page, nil
}

func makeRecords(n int) []rec {
	out := make([]rec, n)
	for i := range out {
		out[i] = rec{ID: fmt.Sprintf("cs_%04d", i)}
	}
	return out
}

func lastID(r rec) string { return r.ID }

func TestFetchAllDrainsWholeLedger(t *testing.T) {
	fake := &fakeLedger{records: makeRecords(250)}

	res, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 5000, LastID: lastID})
	require.NoError(t, err)
	require.Len(t, res.Items, 250)
	require.False(t, res.HasMore)
	require.Empty(t, res.NextStartingAfter)
	// 250 records at 100 per page: two full pages and a remainder.
	require.Equal(t, 3, fake.calls)
}

func TestFetchAllRespectsBudget(t *testing.T) {
	fake := &fakeLedger{records: makeRecords(25)}

	res, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 10, LastID: lastID})
	require.NoError(t, err)
	require.Len(t, res.Items, 10)
	require.True(t, res.HasMore)
	require.Equal(t, "cs_0009", res.NextStartingAfter)
	require.Equal(t, 1, fake.calls)
}

func TestFetchAllPageCountBound(t *testing.T) {
	// For any budget the pager issues at most ceil(budget/MaxPageSize)
	// pages, no matter what the ledger holds.
	for _, budget := range []int{1, 99, 100, 101, 250, 5000} {
		fake := &fakeLedger{records: makeRecords(6000)}

		res, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: budget, LastID: lastID})
		require.NoError(t, err)
		require.Len(t, res.Items, budget)

		maxPages := (budget + MaxPageSize - 1) / MaxPageSize
		require.LessOrEqual(t, fake.calls, maxPages, "budget %d", budget)
	}
}

func TestFetchAllResumesFromCursor(t *testing.T) {
	fake := &fakeLedger{records: makeRecords(30)}

	first, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 10, LastID: lastID})
	require.NoError(t, err)
	require.True(t, first.HasMore)

	second, err := FetchAll(context.Background(), fake.fetch, Options[rec]{
		StartingAfter: first.NextStartingAfter,
		Budget:        100,
		LastID:        lastID,
	})
	require.NoError(t, err)
	require.Len(t, second.Items, 20)
	require.Equal(t, "cs_0010", second.Items[0].ID)
	require.False(t, second.HasMore)
}

func TestFetchAllEmptyPageIsTerminal(t *testing.T) {
	// A provider that claims has_more on an empty page must not loop.
	fake := &fakeLedger{records: makeRecords(5), hasMoreAlways: true}

	res, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 1000, LastID: lastID})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	require.False(t, res.HasMore)
	// One page with the 5 records, one empty page that terminates.
	require.Equal(t, 2, fake.calls)
}

func TestFetchAllEmptyLedger(t *testing.T) {
	fake := &fakeLedger{}

	res, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 100, LastID: lastID})
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.False(t, res.HasMore)
}

func TestFetchAllPropagatesFetchError(t *testing.T) {
	boom := errors.New("provider unavailable")
	fetch := func(ctx context.Context, startingAfter string, pageSize int64) (Page[rec], error) {
		return Page[rec]{}, boom
	}

	_, err := FetchAll(context.Background(), fetch, Options[rec]{Budget: 100, LastID: lastID})
	require.ErrorIs(t, err, boom)
}

func TestFetchAllRejectsBadOptions(t *testing.T) {
	fake := &fakeLedger{records: makeRecords(5)}

	_, err := FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 0, LastID: lastID})
	require.Error(t, err)

	_, err = FetchAll(context.Background(), fake.fetch, Options[rec]{Budget: 10})
	require.Error(t, err)
	require.Zero(t, fake.calls)
}
