// Package members persists community-member profiles in the external
// document store. The store is a collaborator, not a system of record for
// anything financial; the payment provider keeps the customer objects.
package members

import (
	"context"
	"time"
)

// Member is a community-member profile document.
type Member struct {
	Email            string    `firestore:"email" json:"email"`
	FirstName        string    `firestore:"first_name" json:"firstName"`
	LastName         string    `firestore:"last_name" json:"lastName"`
	Phone            string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	AddressLine1     string    `firestore:"address_line1,omitempty" json:"addressLine1,omitempty"`
	AddressLine2     string    `firestore:"address_line2,omitempty" json:"addressLine2,omitempty"`
	City             string    `firestore:"city,omitempty" json:"city,omitempty"`
	State            string    `firestore:"state,omitempty" json:"state,omitempty"`
	PostalCode       string    `firestore:"postal_code,omitempty" json:"postalCode,omitempty"`
	Country          string    `firestore:"country,omitempty" json:"country,omitempty"`
	StripeCustomerID string    `firestore:"stripe_customer_id" json:"stripeCustomerId"`
	UpdatedAt        time.Time `firestore:"updated_at" json:"updatedAt"`
}

// Store is the member-profile document store.
type Store interface {
	// Upsert writes the profile keyed by email, replacing any previous doc.
	Upsert(ctx context.Context, m Member) error
	// GetByEmail returns the profile or nil when absent.
	GetByEmail(ctx context.Context, email string) (*Member, error)
}
