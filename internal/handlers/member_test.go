package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"donorhub/internal/members"
	"donorhub/internal/stripeapi"
)

// memoryStore is an in-memory members.Store for tests.
type memoryStore struct {
	mu   sync.Mutex
	docs map[string]members.Member
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]members.Member)}
}

func (s *memoryStore) Upsert(ctx context.Context, m members.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[m.Email] = m
	return nil
}

func (s *memoryStore) GetByEmail(ctx context.Context, email string) (*members.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.docs[email]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"firstName": "Jane"}`},
		{name: "missing first name", body: `{"email": "jane@example.com"}`},
		{name: "malformed json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLedger{}
			h := NewMemberHandler(fake, newMemoryStore(), nil)

			rec := postJSON(t, h.Register, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Zero(t, fake.calls)
		})
	}
}

func TestRegisterCreatesCustomerAndProfile(t *testing.T) {
	fake := &fakeLedger{
		upsertCustomerFn: func(ctx context.Context, in stripeapi.CustomerInput) (string, error) {
			require.Empty(t, in.ID, "register always creates")
			require.Equal(t, "Jane Smith", in.Name)
			require.Equal(t, "jane@example.com", in.Email)
			require.Equal(t, "DE", in.Address.Country)
			return "cus_123", nil
		},
	}
	store := newMemoryStore()
	h := NewMemberHandler(fake, store, nil)

	body := `{"firstName": "Jane", "lastName": "Smith", "email": "jane@example.com",
		"addressLine1": "Hauptstr. 1", "city": "Berlin", "country": "de"}`
	rec := postJSON(t, h.Register, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success          bool   `json:"success"`
		StripeCustomerID string `json:"stripeCustomerId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "cus_123", resp.StripeCustomerID)

	saved, err := store.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, "cus_123", saved.StripeCustomerID)
	require.Equal(t, "DE", saved.Country)
}

func TestRegisterDuplicateCustomerConflict(t *testing.T) {
	fake := &fakeLedger{
		upsertCustomerFn: func(ctx context.Context, in stripeapi.CustomerInput) (string, error) {
			return "", stripeapi.ErrDuplicateCustomer
		},
	}
	h := NewMemberHandler(fake, newMemoryStore(), nil)

	rec := postJSON(t, h.Register, `{"firstName": "Jane", "email": "jane@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")
	require.NotContains(t, rec.Body.String(), "stripe", "conflict message hides provider detail")
}

func TestUpdateUnknownMember(t *testing.T) {
	fake := &fakeLedger{}
	h := NewMemberHandler(fake, newMemoryStore(), nil)

	rec := postJSON(t, h.Update, `{"email": "ghost@example.com"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Zero(t, fake.calls)
}

func TestUpdateReusesCustomerID(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), members.Member{
		Email:            "jane@example.com",
		FirstName:        "Jane",
		StripeCustomerID: "cus_123",
	}))

	fake := &fakeLedger{
		upsertCustomerFn: func(ctx context.Context, in stripeapi.CustomerInput) (string, error) {
			require.Equal(t, "cus_123", in.ID, "update targets the existing customer")
			return "cus_123", nil
		},
	}
	h := NewMemberHandler(fake, store, nil)

	rec := postJSON(t, h.Update, `{"email": "jane@example.com", "firstName": "Janet", "phone": "+4930123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := store.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Janet", saved.FirstName)
	require.Equal(t, "+4930123456", saved.Phone)
}

func TestRequestPaymentValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing customer", body: `{"amountCents": 5000}`},
		{name: "zero amount", body: `{"customerId": "cus_1", "amountCents": 0}`},
		{name: "negative amount", body: `{"customerId": "cus_1", "amountCents": -100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLedger{}
			h := NewMemberHandler(fake, nil, nil)

			rec := postJSON(t, h.RequestPayment, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Zero(t, fake.calls)
		})
	}
}

func TestRequestPaymentSendsByDefault(t *testing.T) {
	fake := &fakeLedger{
		createInvoiceFn: func(ctx context.Context, in stripeapi.InvoiceInput) (*stripeapi.InvoiceResult, error) {
			require.True(t, in.AutoSend)
			require.Equal(t, int64(5000), in.AmountCents)
			return &stripeapi.InvoiceResult{InvoiceID: "in_1", HostedInvoiceURL: "https://pay.example.com/in_1", Status: "open"}, nil
		},
	}
	h := NewMemberHandler(fake, nil, nil)

	rec := postJSON(t, h.RequestPayment, `{"customerId": "cus_1", "amountCents": 5000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stripeapi.InvoiceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "in_1", resp.InvoiceID)
	require.Equal(t, "open", resp.Status)
}

func TestRequestPaymentDraftOnly(t *testing.T) {
	fake := &fakeLedger{
		createInvoiceFn: func(ctx context.Context, in stripeapi.InvoiceInput) (*stripeapi.InvoiceResult, error) {
			require.False(t, in.AutoSend)
			return &stripeapi.InvoiceResult{InvoiceID: "in_2", Status: "draft"}, nil
		},
	}
	h := NewMemberHandler(fake, nil, nil)

	rec := postJSON(t, h.RequestPayment, `{"customerId": "cus_1", "amountCents": 5000, "autoSend": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"draft"`)
}
