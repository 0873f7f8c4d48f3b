package handlers

import (
	"context"

	"donorhub/internal/query"
	"donorhub/internal/report"
	"donorhub/internal/stripeapi"
)

// fakeLedger implements DonationLedger with overridable funcs, counting
// provider calls so tests can assert validation short-circuits.
type fakeLedger struct {
	calls int

	balanceFn          func(ctx context.Context) (report.BalanceSummary, error)
	donationPageFn     func(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DonationPage, error)
	donationsInRangeFn func(ctx context.Context, created query.Range, budget int) ([]report.Donation, error)
	donationDetailFn   func(ctx context.Context, sessionID string) (*report.DonationDetail, error)
	payoutsFn          func(ctx context.Context, q stripeapi.PageQuery) (stripeapi.PayoutPage, error)
	disputesFn         func(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DisputePage, error)
	createRefundFn     func(ctx context.Context, in stripeapi.RefundInput) (*stripeapi.RefundResult, error)
	createInvoiceFn    func(ctx context.Context, in stripeapi.InvoiceInput) (*stripeapi.InvoiceResult, error)
	upsertCustomerFn   func(ctx context.Context, in stripeapi.CustomerInput) (string, error)
}

func (f *fakeLedger) Balance(ctx context.Context) (report.BalanceSummary, error) {
	f.calls++
	return f.balanceFn(ctx)
}

func (f *fakeLedger) DonationPage(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DonationPage, error) {
	f.calls++
	return f.donationPageFn(ctx, q)
}

func (f *fakeLedger) DonationsInRange(ctx context.Context, created query.Range, budget int) ([]report.Donation, error) {
	f.calls++
	return f.donationsInRangeFn(ctx, created, budget)
}

func (f *fakeLedger) DonationDetail(ctx context.Context, sessionID string) (*report.DonationDetail, error) {
	f.calls++
	return f.donationDetailFn(ctx, sessionID)
}

func (f *fakeLedger) Payouts(ctx context.Context, q stripeapi.PageQuery) (stripeapi.PayoutPage, error) {
	f.calls++
	return f.payoutsFn(ctx, q)
}

func (f *fakeLedger) Disputes(ctx context.Context, q stripeapi.PageQuery) (stripeapi.DisputePage, error) {
	f.calls++
	return f.disputesFn(ctx, q)
}

func (f *fakeLedger) CreateRefund(ctx context.Context, in stripeapi.RefundInput) (*stripeapi.RefundResult, error) {
	f.calls++
	return f.createRefundFn(ctx, in)
}

func (f *fakeLedger) CreateInvoice(ctx context.Context, in stripeapi.InvoiceInput) (*stripeapi.InvoiceResult, error) {
	f.calls++
	return f.createInvoiceFn(ctx, in)
}

func (f *fakeLedger) UpsertCustomer(ctx context.Context, in stripeapi.CustomerInput) (string, error) {
	f.calls++
	return f.upsertCustomerFn(ctx, in)
}

// ledgerWith returns a fake whose DonationsInRange serves from the given
// set, honoring the record budget the way the real pager does.
func ledgerWith(donations []report.Donation) *fakeLedger {
	return &fakeLedger{
		donationsInRangeFn: func(ctx context.Context, created query.Range, budget int) ([]report.Donation, error) {
			if len(donations) > budget {
				return donations[:budget], nil
			}
			return donations, nil
		},
	}
}
