package report

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Totals accumulates gross/count/min/max/avg over minor-unit amounts.
type Totals struct {
	Gross int64 `json:"gross"`
	Count int   `json:"count"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Avg   int64 `json:"avg"`
}

// Accumulate folds a donation set into Totals. The average is the
// integer-rounded mean; an empty set yields all zeros.
func Accumulate(donations []Donation) Totals {
	var t Totals
	for _, d := range donations {
		if t.Count == 0 {
			t.Min = d.Amount
			t.Max = d.Amount
		} else {
			if d.Amount < t.Min {
				t.Min = d.Amount
			}
			if d.Amount > t.Max {
				t.Max = d.Amount
			}
		}
		t.Gross += d.Amount
		t.Count++
	}
	if t.Count > 0 {
		t.Avg = int64(math.Round(float64(t.Gross) / float64(t.Count)))
	}
	return t
}

// DayBucket is one UTC calendar day of donation activity.
type DayBucket struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
	Count  int    `json:"count"`
}

const dayFormat = "2006-01-02"

// DailySeries buckets donations by UTC calendar day and emits one bucket
// per day for the `days` ending at `now`, oldest first. Days with no
// activity appear as zero buckets, so the series is chart-ready and
// gap-free regardless of sparsity.
func DailySeries(donations []Donation, days int, now time.Time) []DayBucket {
	byDay := make(map[string]DayBucket, days)
	for _, d := range donations {
		key := time.Unix(d.Created, 0).UTC().Format(dayFormat)
		b := byDay[key]
		b.Amount += d.Amount
		b.Count++
		byDay[key] = b
	}

	today := now.UTC().Truncate(24 * time.Hour)
	series := make([]DayBucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dayFormat)
		b := byDay[key]
		b.Date = key
		series = append(series, b)
	}
	return series
}

// DonorTotal accumulates one donor's activity. Total is in major currency
// units rounded to two decimals.
type DonorTotal struct {
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MajorUnits converts minor units to two-decimal major units.
func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// TopDonors folds donations per donor and returns the n largest by total.
// Donors key by lowercase trimmed email, falling back to display name when
// no email is present. Ties keep insertion order; exact tie ordering is not
// part of the contract.
func TopDonors(donations []Donation, n int) []DonorTotal {
	index := make(map[string]int)
	var order []DonorTotal

	for _, d := range donations {
		key := strings.ToLower(strings.TrimSpace(d.DonorEmail))
		if key == "" {
			key = d.DonorName
		}
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(order)
			index[key] = i
			order = append(order, DonorTotal{Name: d.DonorName, Email: strings.ToLower(strings.TrimSpace(d.DonorEmail))})
		}
		order[i].Total = roundCents(order[i].Total + MajorUnits(d.Amount))
		order[i].Count++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return order[a].Total > order[b].Total
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recent returns the n most recently created donations, newest first. The
// input slice is not modified.
func Recent(donations []Donation, n int) []Donation {
	out := make([]Donation, len(donations))
	copy(out, donations)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Created > out[b].Created
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
