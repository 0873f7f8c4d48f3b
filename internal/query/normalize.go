package query

import (
	"strconv"
	"strings"
	"time"
)

// Reporting endpoints tolerate malformed client input: bad values fall back
// to defaults or are dropped rather than erroring, so a stale bookmark or a
// hand-typed query string never breaks a dashboard.

// ClampInt parses raw as an integer, substitutes def on failure, and clamps
// the result into [min, max].
func ClampInt(raw string, def, min, max int) int {
	v := def
	if raw != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			v = parsed
		}
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

// Range is an inclusive epoch-second window. A zero bound means "no bound on
// that side"; Has reports whether either side parsed.
type Range struct {
	GTE int64
	LTE int64
}

// Has reports whether the range carries at least one bound.
func (r Range) Has() bool {
	return r.GTE != 0 || r.LTE != 0
}

// epochThreshold separates epoch-second values from other numeric input.
// Anything above it (2001-09-09) is taken as epoch seconds. A legitimately
// smaller epoch or an all-digit date string is misclassified; kept as is for
// compatibility with existing clients.
const epochThreshold = 1_000_000_000

// ParseDateRange builds a Range from two raw bound values, each either epoch
// seconds or a YYYY-MM-DD date. Unparseable bounds are dropped, never an
// error. The lte side of a date string covers the whole day.
func ParseDateRange(gte, lte string) Range {
	return Range{
		GTE: parseBound(gte, false),
		LTE: parseBound(lte, true),
	}
}

func parseBound(raw string, endOfDay bool) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > epochThreshold {
		return n
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC().Unix()
}

// refundReasons is the provider's closed enumeration.
var refundReasons = map[string]bool{
	"duplicate":             true,
	"fraudulent":            true,
	"requested_by_customer": true,
}

// ParseRefundReason validates an optional refund reason. Empty input is
// valid and means "no reason given".
func ParseRefundReason(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	if !refundReasons[raw] {
		return "", false
	}
	return raw, true
}
