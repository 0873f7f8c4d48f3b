// Package report reshapes raw payment-provider records into the stable
// shapes the reporting endpoints return. Every outbound field is listed
// here explicitly; raw provider objects never cross the handler boundary.
package report

import (
	"strings"

	"github.com/stripe/stripe-go/v82"
)

// Donation is the flattened projection of a checkout session used by the
// admin list and export endpoints. Amounts are in minor currency units.
type Donation struct {
	ID              string `json:"id"`
	Created         int64  `json:"created"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	DonorName       string `json:"donor_name,omitempty"`
	DonorEmail      string `json:"donor_email,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	ChargeID        string `json:"charge_id,omitempty"`
	Refunded        bool   `json:"refunded"`
	AmountRefunded  int64  `json:"amount_refunded,omitempty"`
	ReceiptURL      string `json:"receipt_url,omitempty"`
}

// IsDonation reports whether a session counts as a donation: one-off
// payment mode with a positive total. Subscription-mode sessions are
// excluded from donation reports.
func IsDonation(s *stripe.CheckoutSession) bool {
	return s != nil && s.Mode == stripe.CheckoutSessionModePayment && s.AmountTotal > 0
}

// FromSession projects a checkout session, tolerating any level of
// expansion: the payment intent and its latest charge may be absent,
// id-only references, or fully expanded objects.
func FromSession(s *stripe.CheckoutSession) Donation {
	d := Donation{
		ID:       s.ID,
		Created:  s.Created,
		Amount:   s.AmountTotal,
		Currency: string(s.Currency),
		Status:   string(s.PaymentStatus),
	}

	if s.CustomerDetails != nil {
		d.DonorName = s.CustomerDetails.Name
		d.DonorEmail = s.CustomerDetails.Email
	}

	d.PaymentIntentID = intentID(s.PaymentIntent)
	if ch := chargeOf(s.PaymentIntent); ch != nil {
		d.ChargeID = ch.ID
		d.Refunded = ch.Refunded
		d.AmountRefunded = ch.AmountRefunded
		d.ReceiptURL = ch.ReceiptURL
	}

	return d
}

// Expandable references decode as structs that carry only an ID when the
// field was not expanded. These helpers keep that distinction in one place.

func intentID(pi *stripe.PaymentIntent) string {
	if pi == nil {
		return ""
	}
	return pi.ID
}

// chargeOf returns the latest charge only when it was actually expanded;
// an id-only reference has no refund state worth projecting.
func chargeOf(pi *stripe.PaymentIntent) *stripe.Charge {
	if pi == nil || pi.LatestCharge == nil {
		return nil
	}
	return pi.LatestCharge
}

// PublicName reduces a full display name to first name plus an initial,
// e.g. "Jane Smith" -> "Jane S.". Single-word names pass through. This is
// the PII-reduction policy for public summary endpoints; admin endpoints
// forward the full name.
func PublicName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "Anonymous"
	case 1:
		return fields[0]
	default:
		last := fields[len(fields)-1]
		return fields[0] + " " + strings.ToUpper(last[:1]) + "."
	}
}

// PublicDonation is the PII-reduced shape for the public donations list.
type PublicDonation struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Created  int64   `json:"created"`
}

// Public strips a donation down to what the public list may see.
func (d Donation) Public() PublicDonation {
	return PublicDonation{
		Name:     PublicName(d.DonorName),
		Amount:   MajorUnits(d.Amount),
		Currency: d.Currency,
		Created:  d.Created,
	}
}

// IntentDetail is the whitelisted payment-intent shape for get-donation.
type IntentDetail struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Created  int64  `json:"created"`
	Currency string `json:"currency"`
}

// ChargeDetail is the whitelisted charge shape for get-donation.
type ChargeDetail struct {
	ID                   string `json:"id"`
	Amount               int64  `json:"amount"`
	Status               string `json:"status"`
	Created              int64  `json:"created"`
	Refunded             bool   `json:"refunded"`
	AmountRefunded       int64  `json:"amount_refunded"`
	ReceiptURL           string `json:"receipt_url,omitempty"`
	BalanceTransactionID string `json:"balance_transaction_id,omitempty"`
}

// BalanceTxDetail carries fee/net accounting for a charge. It is a
// best-effort lookup: a nil value means "unavailable", never an error.
type BalanceTxDetail struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Fee      int64  `json:"fee"`
	Net      int64  `json:"net"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// DonationDetail is the get-donation response body.
type DonationDetail struct {
	Session            Donation         `json:"session"`
	PaymentIntent      *IntentDetail    `json:"payment_intent"`
	Charge             *ChargeDetail    `json:"charge"`
	BalanceTransaction *BalanceTxDetail `json:"balance_transaction"`
}

// FromIntent projects a payment intent for the detail view.
func FromIntent(pi *stripe.PaymentIntent) *IntentDetail {
	if pi == nil {
		return nil
	}
	return &IntentDetail{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Status:   string(pi.Status),
		Created:  pi.Created,
		Currency: string(pi.Currency),
	}
}

// FromCharge projects a charge for the detail view.
func FromCharge(ch *stripe.Charge) *ChargeDetail {
	if ch == nil {
		return nil
	}
	d := &ChargeDetail{
		ID:             ch.ID,
		Amount:         ch.Amount,
		Status:         string(ch.Status),
		Created:        ch.Created,
		Refunded:       ch.Refunded,
		AmountRefunded: ch.AmountRefunded,
		ReceiptURL:     ch.ReceiptURL,
	}
	if ch.BalanceTransaction != nil {
		d.BalanceTransactionID = ch.BalanceTransaction.ID
	}
	return d
}

// FromBalanceTransaction projects a balance transaction for the detail view.
func FromBalanceTransaction(bt *stripe.BalanceTransaction) *BalanceTxDetail {
	if bt == nil {
		return nil
	}
	return &BalanceTxDetail{
		ID:       bt.ID,
		Amount:   bt.Amount,
		Fee:      bt.Fee,
		Net:      bt.Net,
		Currency: string(bt.Currency),
		Status:   string(bt.Status),
	}
}

// PayoutSummary is the whitelisted payout list item.
type PayoutSummary struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Created     int64  `json:"created"`
	ArrivalDate int64  `json:"arrival_date"`
	Method      string `json:"method,omitempty"`
}

// FromPayout projects a payout record.
func FromPayout(p *stripe.Payout) PayoutSummary {
	return PayoutSummary{
		ID:          p.ID,
		Amount:      p.Amount,
		Currency:    string(p.Currency),
		Status:      string(p.Status),
		Created:     p.Created,
		ArrivalDate: p.ArrivalDate,
		Method:      string(p.Method),
	}
}

// DisputeSummary is the whitelisted dispute list item.
type DisputeSummary struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
	Created  int64  `json:"created"`
	ChargeID string `json:"charge_id,omitempty"`
}

// FromDispute projects a dispute record.
func FromDispute(d *stripe.Dispute) DisputeSummary {
	out := DisputeSummary{
		ID:       d.ID,
		Amount:   d.Amount,
		Currency: string(d.Currency),
		Reason:   string(d.Reason),
		Status:   string(d.Status),
		Created:  d.Created,
	}
	if d.Charge != nil {
		out.ChargeID = d.Charge.ID
	}
	return out
}

// BalanceSummary is the whitelisted balance shape. Amounts are minor units
// in the account's primary currency.
type BalanceSummary struct {
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Currency  string `json:"currency"`
}

// FromBalance sums the per-currency funds into a single summary, taking the
// currency of the first available bucket as primary.
func FromBalance(b *stripe.Balance) BalanceSummary {
	var out BalanceSummary
	for _, a := range b.Available {
		out.Available += a.Amount
		if out.Currency == "" {
			out.Currency = string(a.Currency)
		}
	}
	for _, p := range b.Pending {
		out.Pending += p.Amount
	}
	return out
}
