package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"donorhub/internal/query"
	"donorhub/internal/report"
	"donorhub/internal/services"
)

// Budgets for the public aggregation endpoints; smaller than the export
// ceiling since these run on every page load.
const (
	publicFetchBudget = 1000
	overviewRecentN   = 20
	publicRecentN     = 25
	topDonorsN        = 10
	publicCacheTTL    = 60 * time.Second
)

// PublicHandler serves the unauthenticated donation summaries. Upstream
// failures degrade to 200 with ok:false so the site keeps rendering.
type PublicHandler struct {
	ledger DonationLedger
	cache  *services.RedisCache
	now    func() time.Time
}

// NewPublicHandler builds the handler; cache may be nil.
func NewPublicHandler(ledger DonationLedger, cache *services.RedisCache) *PublicHandler {
	return &PublicHandler{ledger: ledger, cache: cache, now: time.Now}
}

type overviewPayload struct {
	OK     bool                    `json:"ok"`
	Totals report.Totals           `json:"totals"`
	Daily  []report.DayBucket      `json:"daily"`
	Recent []report.PublicDonation `json:"recent"`
}

// Overview returns totals, a zero-filled daily series, and recent activity
// for the last N days.
func (h *PublicHandler) Overview(c echo.Context) error {
	cachePublic(c)
	days := query.ClampInt(c.QueryParam("days"), 30, 1, 365)
	ctx := c.Request().Context()

	key := fmt.Sprintf("public:overview:%d", days)
	payload, err := services.GetOrSet(h.cache, ctx, key, publicCacheTTL, func() (overviewPayload, error) {
		now := h.now().UTC()
		windowStart := now.Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))

		donations, err := h.ledger.DonationsInRange(ctx, query.Range{GTE: windowStart.Unix()}, publicFetchBudget)
		if err != nil {
			return overviewPayload{}, err
		}

		recent := make([]report.PublicDonation, 0, overviewRecentN)
		for _, d := range report.Recent(donations, overviewRecentN) {
			recent = append(recent, d.Public())
		}

		return overviewPayload{
			OK:     true,
			Totals: report.Accumulate(donations),
			Daily:  report.DailySeries(donations, days, now),
			Recent: recent,
		}, nil
	})
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"ok": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}

type publicDonor struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type publicListPayload struct {
	OK              bool                    `json:"ok"`
	RecentDonations []report.PublicDonation `json:"recentDonations"`
	TopDonors       []publicDonor           `json:"topDonors"`
}

// Donations returns the PII-reduced recent-donations and top-donors lists.
func (h *PublicHandler) Donations(c echo.Context) error {
	cachePublic(c)
	ctx := c.Request().Context()

	payload, err := services.GetOrSet(h.cache, ctx, "public:donations", publicCacheTTL, func() (publicListPayload, error) {
		windowStart := h.now().UTC().AddDate(0, 0, -365)
		donations, err := h.ledger.DonationsInRange(ctx, query.Range{GTE: windowStart.Unix()}, publicFetchBudget)
		if err != nil {
			return publicListPayload{}, err
		}

		recent := make([]report.PublicDonation, 0, publicRecentN)
		for _, d := range report.Recent(donations, publicRecentN) {
			recent = append(recent, d.Public())
		}

		donors := make([]publicDonor, 0, topDonorsN)
		for _, t := range report.TopDonors(donations, topDonorsN) {
			donors = append(donors, publicDonor{
				Name:  report.PublicName(t.Name),
				Total: t.Total,
				Count: t.Count,
			})
		}

		return publicListPayload{OK: true, RecentDonations: recent, TopDonors: donors}, nil
	})
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"ok": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}
