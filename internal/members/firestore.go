package members

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps member profiles in a Firestore collection keyed by
// lowercase email.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func docID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *FirestoreStore) Upsert(ctx context.Context, m Member) error {
	id := docID(m.Email)
	if id == "" {
		return fmt.Errorf("member email is required")
	}
	m.Email = id
	m.UpdatedAt = time.Now().UTC()

	if _, err := s.client.Collection(s.collection).Doc(id).Set(ctx, m); err != nil {
		return fmt.Errorf("upsert member %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) GetByEmail(ctx context.Context, email string) (*Member, error) {
	id := docID(email)
	if id == "" {
		return nil, fmt.Errorf("member email is required")
	}

	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get member %s: %w", id, err)
	}

	var m Member
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", id, err)
	}
	return &m, nil
}
