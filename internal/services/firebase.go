package services

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirestore initializes the Firebase Admin SDK and returns a Firestore
// client for the member/profile document store.
func InitFirestore(ctx context.Context, credPath string) (*firestore.Client, error) {
	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}
