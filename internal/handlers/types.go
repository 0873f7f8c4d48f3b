package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"donorhub/internal/query"
	"donorhub/internal/report"
	"donorhub/internal/stripeapi"
)

// DonationLedger is the slice of the payment provider the handlers use.
// Declared consumer-side so handler tests can run against a fake.
type DonationLedger interface {
	Balance(ctx context.Context) (report.BalanceSummary, error)
	DonationPage(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DonationPage, error)
	DonationsInRange(ctx context.Context, created query.Range, budget int) ([]report.Donation, error)
	DonationDetail(ctx context.Context, sessionID string) (*report.DonationDetail, error)
	Payouts(ctx context.Context, q stripeapi.PageQuery) (stripeapi.PayoutPage, error)
	Disputes(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DisputePage, error)
	CreateRefund(ctx context.Context, in stripeapi.RefundInput) (*stripeapi.RefundResult, error)
	CreateInvoice(ctx context.Context, in stripeapi.InvoiceInput) (*stripeapi.InvoiceResult, error)
	UpsertCustomer(ctx context.Context, in stripeapi.CustomerInput) (string, error)
}

// noStore marks admin responses as uncacheable.
func noStore(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "no-store")
}

// cachePublic allows shared caches to hold a public report briefly.
func cachePublic(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "public, max-age=60")
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return jsonError(c, http.StatusBadRequest, msg)
}
