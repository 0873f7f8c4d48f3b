package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"donorhub/internal/members"
	"donorhub/internal/services"
	"donorhub/internal/stripeapi"
)

// MemberHandler serves the community-member signup flow and the public
// invoice request. Profiles live in the document store; the payment
// provider owns the customer objects.
type MemberHandler struct {
	ledger DonationLedger
	store  members.Store
	email  *services.EmailService
}

// NewMemberHandler builds the handler. store and email may be nil when the
// corresponding backend is not configured; both are treated best-effort.
func NewMemberHandler(ledger DonationLedger, store members.Store, email *services.EmailService) *MemberHandler {
	return &MemberHandler{ledger: ledger, store: store, email: email}
}

type memberRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

func (r *memberRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.AddressLine1 = strings.TrimSpace(r.AddressLine1)
	r.AddressLine2 = strings.TrimSpace(r.AddressLine2)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.Country = strings.TrimSpace(r.Country)
}

func (r *memberRequest) displayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

func (r *memberRequest) customerInput(customerID string) stripeapi.CustomerInput {
	return stripeapi.CustomerInput{
		ID:    customerID,
		Name:  r.displayName(),
		Email: r.Email,
		Phone: r.Phone,
		Address: stripeapi.CustomerAddress{
			Line1:      r.AddressLine1,
			Line2:      r.AddressLine2,
			City:       r.City,
			State:      r.State,
			PostalCode: r.PostalCode,
			Country:    r.Country,
		},
	}
}

func (r *memberRequest) profile(customerID string) members.Member {
	return members.Member{
		Email:            strings.ToLower(r.Email),
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Phone:            r.Phone,
		AddressLine1:     r.AddressLine1,
		AddressLine2:     r.AddressLine2,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		Country:          stripeapi.NormalizeCountry(r.Country),
		StripeCustomerID: customerID,
	}
}

// Register creates a provider customer and stores the member profile.
func (h *MemberHandler) Register(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	req.trim()
	if req.Email == "" || req.FirstName == "" {
		return badRequest(c, "firstName and email are required")
	}

	ctx := c.Request().Context()
	customerID, err := h.ledger.UpsertCustomer(ctx, req.customerInput(""))
	if err != nil {
		if errors.Is(err, stripeapi.ErrDuplicateCustomer) {
			return jsonError(c, http.StatusConflict, "a member with this email already exists")
		}
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	if h.store != nil {
		if err := h.store.Upsert(ctx, req.profile(customerID)); err != nil {
			log.Printf("member profile save failed for %s: %v", req.Email, err)
		}
	}

	if h.email != nil {
		if err := h.email.SendWelcome(req.Email, req.FirstName); err != nil {
			log.Printf("welcome email failed for %s: %v", req.Email, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":          true,
		"stripeCustomerId": customerID,
	})
}

// Update modifies an existing member's provider customer and profile.
func (h *MemberHandler) Update(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	req.trim()
	if req.Email == "" {
		return badRequest(c, "email is required")
	}
	if h.store == nil {
		return jsonError(c, http.StatusInternalServerError, "member store is not configured")
	}

	ctx := c.Request().Context()
	existing, err := h.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	if existing == nil {
		return jsonError(c, http.StatusNotFound, "member not found")
	}

	customerID, err := h.ledger.UpsertCustomer(ctx, req.customerInput(existing.StripeCustomerID))
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	if err := h.store.Upsert(ctx, req.profile(customerID)); err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":          true,
		"stripeCustomerId": customerID,
	})
}

type requestPaymentBody struct {
	CustomerID  string `json:"customerId"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description"`
	// AutoSend defaults to true; pass false to leave the invoice a draft.
	AutoSend *bool `json:"autoSend"`
}

// RequestPayment creates an invoice for a known customer and, by default,
// finalizes and sends it.
func (h *MemberHandler) RequestPayment(c echo.Context) error {
	var req requestPaymentBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.CustomerID == "" {
		return badRequest(c, "customerId is required")
	}
	if req.AmountCents <= 0 {
		return badRequest(c, "amountCents must be a positive integer")
	}

	autoSend := true
	if req.AutoSend != nil {
		autoSend = *req.AutoSend
	}

	inv, err := h.ledger.CreateInvoice(c.Request().Context(), stripeapi.InvoiceInput{
		CustomerID:  req.CustomerID,
		AmountCents: req.AmountCents,
		Description: strings.TrimSpace(req.Description),
		AutoSend:    autoSend,
	})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inv)
}
