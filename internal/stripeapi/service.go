// Package stripeapi wraps the Stripe client behind the operations the
// reporting and mutation handlers need. Handlers never see raw provider
// structs; everything goes out through the report projections.
package stripeapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"donorhub/internal/ledger"
	"donorhub/internal/query"
	"donorhub/internal/report"
)

// ErrDuplicateCustomer flags a provider-reported duplicate on customer
// creation so handlers can return a conflict message instead of the raw
// provider error.
var ErrDuplicateCustomer = errors.New("customer already exists")

// Service is a thin wrapper over the Stripe API with an injected key.
type Service struct {
	api      *client.API
	currency string
}

// New builds a Service. currency is the account's donation currency in
// lowercase ISO form, e.g. "usd".
func New(secretKey, currency string) *Service {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Service{api: api, currency: currency}
}

// PageQuery filters one page of a ledger listing.
type PageQuery struct {
	Limit         int64
	StartingAfter string
	Created       query.Range
}

// DonationPage is one page of qualifying donations plus resume state. The
// cursor advances over raw ledger records, so filtered-out records are
// still skipped past rather than refetched.
type DonationPage struct {
	Items             []report.Donation
	HasMore           bool
	NextStartingAfter string
}

func rangeParams(r query.Range) *stripe.RangeQueryParams {
	if !r.Has() {
		return nil
	}
	return &stripe.RangeQueryParams{
		GreaterThanOrEqual: r.GTE,
		LesserThanOrEqual:  r.LTE,
	}
}

// sessionPage fetches a single raw page of checkout sessions.
func (s *Service) sessionPage(ctx context.Context, q PageQuery) (ledger.Page[*stripe.CheckoutSession], error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(q.Limit)
	if q.StartingAfter != "" {
		params.StartingAfter = stripe.String(q.StartingAfter)
	}
	params.CreatedRange = rangeParams(q.Created)
	params.AddExpand("data.payment_intent")
	params.AddExpand("data.payment_intent.latest_charge")

	var page ledger.Page[*stripe.CheckoutSession]
	iter := s.api.CheckoutSessions.List(params)
	for iter.Next() {
		page.Items = append(page.Items, iter.CheckoutSession())
	}
	if err := iter.Err(); err != nil {
		return page, fmt.Errorf("list checkout sessions: %w", err)
	}
	page.HasMore = iter.CheckoutSessionList().HasMore
	return page, nil
}

// DonationPage lists one page of donations for the admin list endpoint.
func (s *Service) DonationPage(ctx context.Context, q PageQuery) (DonationPage, error) {
	raw, err := s.sessionPage(ctx, q)
	if err != nil {
		return DonationPage{}, err
	}

	out := DonationPage{HasMore: raw.HasMore}
	for _, sess := range raw.Items {
		if report.IsDonation(sess) {
			out.Items = append(out.Items, report.FromSession(sess))
		}
	}
	if len(raw.Items) > 0 {
		out.NextStartingAfter = raw.Items[len(raw.Items)-1].ID
	}
	return out, nil
}

// DonationsInRange drains up to budget qualifying sessions in the created
// window, paging sequentially until the ledger is exhausted.
func (s *Service) DonationsInRange(ctx context.Context, created query.Range, budget int) ([]report.Donation, error) {
	fetch := func(ctx context.Context, startingAfter string, pageSize int64) (ledger.Page[*stripe.CheckoutSession], error) {
		return s.sessionPage(ctx, PageQuery{
			Limit:         pageSize,
			StartingAfter: startingAfter,
			Created:       created,
		})
	}

	res, err := ledger.FetchAll(ctx, fetch, ledger.Options[*stripe.CheckoutSession]{
		Budget: budget,
		LastID: func(sess *stripe.CheckoutSession) string { return sess.ID },
	})
	if err != nil {
		return nil, err
	}

	donations := make([]report.Donation, 0, len(res.Items))
	for _, sess := range res.Items {
		if report.IsDonation(sess) {
			donations = append(donations, report.FromSession(sess))
		}
	}
	return donations, nil
}

// Balance fetches the account balance summary.
func (s *Service) Balance(ctx context.Context) (report.BalanceSummary, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	bal, err := s.api.Balance.Get(params)
	if err != nil {
		return report.BalanceSummary{}, fmt.Errorf("get balance: %w", err)
	}
	return report.FromBalance(bal), nil
}

// DonationDetail fetches a session with its payment intent, charge and,
// best-effort, the charge's balance transaction.
func (s *Service) DonationDetail(ctx context.Context, sessionID string) (*report.DonationDetail, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	params.AddExpand("payment_intent.latest_charge")

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}

	detail := &report.DonationDetail{
		Session:       report.FromSession(sess),
		PaymentIntent: report.FromIntent(sess.PaymentIntent),
	}

	var charge *stripe.Charge
	if sess.PaymentIntent != nil {
		charge = sess.PaymentIntent.LatestCharge
	}
	detail.Charge = report.FromCharge(charge)

	if charge != nil && charge.BalanceTransaction != nil {
		detail.BalanceTransaction = s.balanceTransaction(ctx, charge.BalanceTransaction.ID)
	}
	return detail, nil
}

// balanceTransaction is a best-effort lookup: any failure becomes nil so
// fee/net detail being unavailable never fails the parent request.
func (s *Service) balanceTransaction(ctx context.Context, id string) *report.BalanceTxDetail {
	if id == "" {
		return nil
	}
	params := &stripe.BalanceTransactionParams{}
	params.Context = ctx
	bt, err := s.api.BalanceTransactions.Get(id, params)
	if err != nil {
		return nil
	}
	return report.FromBalanceTransaction(bt)
}

// PayoutPage is one page of payouts plus resume state.
type PayoutPage struct {
	Items             []report.PayoutSummary
	HasMore           bool
	NextStartingAfter string
}

// Payouts lists one page of payouts.
func (s *Service) Payouts(ctx context.Context, q PageQuery) (PayoutPage, error) {
	params := &stripe.PayoutListParams{}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(q.Limit)
	if q.StartingAfter != "" {
		params.StartingAfter = stripe.String(q.StartingAfter)
	}
	params.CreatedRange = rangeParams(q.Created)

	var out PayoutPage
	iter := s.api.Payouts.List(params)
	for iter.Next() {
		out.Items = append(out.Items, report.FromPayout(iter.Payout()))
	}
	if err := iter.Err(); err != nil {
		return out, fmt.Errorf("list payouts: %w", err)
	}
	out.HasMore = iter.PayoutList().HasMore
	if n := len(out.Items); n > 0 {
		out.NextStartingAfter = out.Items[n-1].ID
	}
	return out, nil
}

// DisputePage is one page of disputes plus resume state.
type DisputePage struct {
	Items             []report.DisputeSummary
	HasMore           bool
	NextStartingAfter string
}

// Disputes lists one page of disputes.
func (s *Service) Disputes(ctx context.Context, q PageQuery) (DisputePage, error) {
	params := &stripe.DisputeListParams{}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(q.Limit)
	if q.StartingAfter != "" {
		params.StartingAfter = stripe.String(q.StartingAfter)
	}
	params.CreatedRange = rangeParams(q.Created)

	var out DisputePage
	iter := s.api.Disputes.List(params)
	for iter.Next() {
		out.Items = append(out.Items, report.FromDispute(iter.Dispute()))
	}
	if err := iter.Err(); err != nil {
		return out, fmt.Errorf("list disputes: %w", err)
	}
	out.HasMore = iter.DisputeList().HasMore
	if n := len(out.Items); n > 0 {
		out.NextStartingAfter = out.Items[n-1].ID
	}
	return out, nil
}

// RefundInput describes a refund request. Exactly one of PaymentIntentID
// and ChargeID must be set; a zero Amount means full refund.
type RefundInput struct {
	PaymentIntentID string
	ChargeID        string
	Amount          int64
	Reason          string
}

// RefundResult is the whitelisted refund shape returned to the admin.
type RefundResult struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Created  int64  `json:"created"`
}

// CreateRefund issues a refund against a payment intent or charge.
func (s *Service) CreateRefund(ctx context.Context, in RefundInput) (*RefundResult, error) {
	if (in.PaymentIntentID == "") == (in.ChargeID == "") {
		return nil, errors.New("exactly one of payment_intent_id and charge_id is required")
	}

	params := &stripe.RefundParams{}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())
	if in.PaymentIntentID != "" {
		params.PaymentIntent = stripe.String(in.PaymentIntentID)
	} else {
		params.Charge = stripe.String(in.ChargeID)
	}
	if in.Amount > 0 {
		params.Amount = stripe.Int64(in.Amount)
	}
	if in.Reason != "" {
		params.Reason = stripe.String(in.Reason)
	}

	ref, err := s.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &RefundResult{
		ID:       ref.ID,
		Amount:   ref.Amount,
		Currency: string(ref.Currency),
		Status:   string(ref.Status),
		Created:  ref.Created,
	}, nil
}

// InvoiceInput describes an invoice request. AmountCents is in minor units
// and must be positive.
type InvoiceInput struct {
	CustomerID  string
	AmountCents int64
	Description string
	// AutoSend finalizes and emails the invoice after creation. When false
	// the invoice stays a draft.
	AutoSend bool
}

// InvoiceResult is the whitelisted invoice shape.
type InvoiceResult struct {
	InvoiceID        string `json:"invoiceId"`
	HostedInvoiceURL string `json:"hostedInvoiceUrl,omitempty"`
	Status           string `json:"status"`
}

const defaultInvoiceDescription = "Donation request"

// CreateInvoice creates a draft invoice with a single line item and, unless
// suppressed, finalizes and sends it. A failure after the draft exists is
// surfaced without rolling the draft back; an unfinalized draft is inert
// and the provider remains the source of truth.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*InvoiceResult, error) {
	if in.CustomerID == "" {
		return nil, errors.New("customer id is required")
	}
	if in.AmountCents <= 0 {
		return nil, errors.New("amount must be a positive integer of minor units")
	}
	desc := in.Description
	if desc == "" {
		desc = defaultInvoiceDescription
	}

	invParams := &stripe.InvoiceParams{
		Customer:         stripe.String(in.CustomerID),
		CollectionMethod: stripe.String("send_invoice"),
		DaysUntilDue:     stripe.Int64(30),
		AutoAdvance:      stripe.Bool(false),
		Description:      stripe.String(desc),
	}
	invParams.Context = ctx
	invParams.IdempotencyKey = stripe.String(uuid.NewString())

	inv, err := s.api.Invoices.New(invParams)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	itemParams := &stripe.InvoiceItemParams{
		Customer:    stripe.String(in.CustomerID),
		Invoice:     stripe.String(inv.ID),
		Amount:      stripe.Int64(in.AmountCents),
		Currency:    stripe.String(s.currency),
		Description: stripe.String(desc),
	}
	itemParams.Context = ctx
	itemParams.IdempotencyKey = stripe.String(uuid.NewString())

	if _, err := s.api.InvoiceItems.New(itemParams); err != nil {
		return nil, fmt.Errorf("attach invoice item to %s: %w", inv.ID, err)
	}

	if in.AutoSend {
		draftID := inv.ID

		finalizeParams := &stripe.InvoiceFinalizeInvoiceParams{}
		finalizeParams.Context = ctx
		inv, err = s.api.Invoices.FinalizeInvoice(draftID, finalizeParams)
		if err != nil {
			return nil, fmt.Errorf("finalize invoice %s: %w", draftID, err)
		}

		sendParams := &stripe.InvoiceSendInvoiceParams{}
		sendParams.Context = ctx
		inv, err = s.api.Invoices.SendInvoice(draftID, sendParams)
		if err != nil {
			return nil, fmt.Errorf("send invoice %s: %w", draftID, err)
		}
	}

	return &InvoiceResult{
		InvoiceID:        inv.ID,
		HostedInvoiceURL: inv.HostedInvoiceURL,
		Status:           string(inv.Status),
	}, nil
}

// CustomerAddress carries optional address sub-fields; an address object is
// only sent to the provider when at least one is non-empty.
type CustomerAddress struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a CustomerAddress) empty() bool {
	return a.Line1 == "" && a.Line2 == "" && a.City == "" &&
		a.State == "" && a.PostalCode == "" && a.Country == ""
}

// CustomerInput describes a customer create or update. An empty ID creates.
type CustomerInput struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address CustomerAddress
}

// UpsertCustomer creates or updates a provider customer and returns its id.
// Duplicate creation reported by the provider maps to ErrDuplicateCustomer.
func (s *Service) UpsertCustomer(ctx context.Context, in CustomerInput) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if in.Name != "" {
		params.Name = stripe.String(in.Name)
	}
	if in.Email != "" {
		params.Email = stripe.String(in.Email)
	}
	if in.Phone != "" {
		params.Phone = stripe.String(in.Phone)
	}
	if !in.Address.empty() {
		addr := &stripe.AddressParams{}
		if in.Address.Line1 != "" {
			addr.Line1 = stripe.String(in.Address.Line1)
		}
		if in.Address.Line2 != "" {
			addr.Line2 = stripe.String(in.Address.Line2)
		}
		if in.Address.City != "" {
			addr.City = stripe.String(in.Address.City)
		}
		if in.Address.State != "" {
			addr.State = stripe.String(in.Address.State)
		}
		if in.Address.PostalCode != "" {
			addr.PostalCode = stripe.String(in.Address.PostalCode)
		}
		if c := NormalizeCountry(in.Address.Country); c != "" {
			addr.Country = stripe.String(c)
		}
		params.Address = addr
	}

	if in.ID != "" {
		cus, err := s.api.Customers.Update(in.ID, params)
		if err != nil {
			return "", fmt.Errorf("update customer %s: %w", in.ID, err)
		}
		return cus.ID, nil
	}

	params.IdempotencyKey = stripe.String(uuid.NewString())
	cus, err := s.api.Customers.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceAlreadyExists {
			return "", ErrDuplicateCustomer
		}
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cus.ID, nil
}

// NormalizeCountry uppercases a 2-letter country code; anything else is
// dropped rather than sent to the provider malformed.
func NormalizeCountry(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) != 2 {
		return ""
	}
	return raw
}
