package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"donorhub/internal/query"
	"donorhub/internal/report"
	"donorhub/internal/stripeapi"
)

// Pagination and export budgets. The export ceiling bounds worst-case
// latency and response size; callers can only shrink it.
const (
	defaultPageLimit = 25
	maxPageLimit     = 100
	defaultExportMax = 1000
	exportCeiling    = 5000
)

// AdminHandler serves the admin reporting and mutation endpoints. All of
// them sit behind the shared-secret guard and trust the caller to read
// provider error messages verbatim.
type AdminHandler struct {
	ledger DonationLedger
}

func NewAdminHandler(ledger DonationLedger) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

func pageQueryFrom(c echo.Context) stripeapi.PageQuery {
	return stripeapi.PageQuery{
		Limit:         int64(query.ClampInt(c.QueryParam("limit"), defaultPageLimit, 1, maxPageLimit)),
		StartingAfter: strings.TrimSpace(c.QueryParam("starting_after")),
		Created:       query.ParseDateRange(c.QueryParam("created_gte"), c.QueryParam("created_lte")),
	}
}

// Balance returns the account balance summary.
func (h *AdminHandler) Balance(c echo.Context) error {
	noStore(c)
	bal, err := h.ledger.Balance(c.Request().Context())
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"balance": bal})
}

// ListDonations returns one page of qualifying donation sessions.
func (h *AdminHandler) ListDonations(c echo.Context) error {
	noStore(c)
	page, err := h.ledger.DonationPage(c.Request().Context(), pageQueryFrom(c))
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	items := page.Items
	if items == nil {
		items = []report.Donation{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"has_more":            page.HasMore,
		"next_starting_after": page.NextStartingAfter,
		"items":               items,
	})
}

// GetDonation returns the full detail for one session, including the
// best-effort balance transaction.
func (h *AdminHandler) GetDonation(c echo.Context) error {
	noStore(c)
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "session id is required")
	}
	detail, err := h.ledger.DonationDetail(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// ExportDonations streams the donation window as a CSV attachment.
func (h *AdminHandler) ExportDonations(c echo.Context) error {
	noStore(c)
	max := query.ClampInt(c.QueryParam("max"), defaultExportMax, 1, exportCeiling)
	created := query.ParseDateRange(c.QueryParam("created_gte"), c.QueryParam("created_lte"))

	donations, err := h.ledger.DonationsInRange(c.Request().Context(), created, max)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	payload, err := report.DonationsCSV(donations)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("donations-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ListPayouts returns one page of payouts.
func (h *AdminHandler) ListPayouts(c echo.Context) error {
	noStore(c)
	page, err := h.ledger.Payouts(c.Request().Context(), pageQueryFrom(c))
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	items := page.Items
	if items == nil {
		items = []report.PayoutSummary{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"has_more":            page.HasMore,
		"next_starting_after": page.NextStartingAfter,
		"items":               items,
	})
}

// ListDisputes returns one page of disputes.
func (h *AdminHandler) ListDisputes(c echo.Context) error {
	noStore(c)
	page, err := h.ledger.Disputes(c.Request().Context(), pageQueryFrom(c))
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	items := page.Items
	if items == nil {
		items = []report.DisputeSummary{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"has_more":            page.HasMore,
		"next_starting_after": page.NextStartingAfter,
		"items":               items,
	})
}

type refundRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ChargeID        string `json:"charge_id"`
	Amount          int64  `json:"amount"`
	Reason          string `json:"reason"`
}

// CreateRefund refunds a charge or payment intent. Validation happens
// before any provider call so a malformed request never leaves the process.
func (h *AdminHandler) CreateRefund(c echo.Context) error {
	noStore(c)

	var req refundRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	req.PaymentIntentID = strings.TrimSpace(req.PaymentIntentID)
	req.ChargeID = strings.TrimSpace(req.ChargeID)
	if req.PaymentIntentID == "" && req.ChargeID == "" {
		return badRequest(c, "one of payment_intent_id or charge_id is required")
	}
	if req.PaymentIntentID != "" && req.ChargeID != "" {
		return badRequest(c, "provide only one of payment_intent_id and charge_id")
	}
	if req.Amount < 0 {
		return badRequest(c, "amount must be a positive integer of minor units")
	}
	reason, ok := query.ParseRefundReason(req.Reason)
	if !ok {
		return badRequest(c, "reason must be one of duplicate, fraudulent, requested_by_customer")
	}

	ref, err := h.ledger.CreateRefund(c.Request().Context(), stripeapi.RefundInput{
		PaymentIntentID: req.PaymentIntentID,
		ChargeID:        req.ChargeID,
		Amount:          req.Amount,
		Reason:          reason,
	})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"refund": ref})
}
