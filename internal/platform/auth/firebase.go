package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/bazzarna/storefront/internal/platform/config"
)

// ErrUserNotFound is returned by DeleteUser when the identity no longer exists.
var ErrUserNotFound = errors.New("auth: user not found")

// adminClient is the slice of the Admin SDK auth client the verifier calls.
type adminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseVerifier verifies operator tokens and deletes store owner identities through
// the Firebase Admin SDK. Every call is bounded by defaultVerifyTimeout.
type FirebaseVerifier struct {
	client     adminClient
	isNotFound func(error) bool
}

// NewFirebaseVerifier initialises the Admin SDK for cfg.ProjectID, using
// cfg.CredentialsFile when set and application default credentials otherwise.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("auth: firebase project id is required")
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.CredentialsFile); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase auth client: %w", err)
	}
	return newFirebaseVerifier(client, firebaseauth.IsUserNotFound), nil
}

func newFirebaseVerifier(client adminClient, isNotFound func(error) bool) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, isNotFound: isNotFound}
}

func (v *FirebaseVerifier) ready() error {
	if v == nil || v.client == nil {
		return errors.New("auth: firebase verifier not initialised")
	}
	return nil
}

// VerifyIDToken checks signature, audience and expiry of an ID token.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultVerifyTimeout)
	defer cancel()
	return v.client.VerifyIDToken(ctx, idToken)
}

// DeleteUser removes the auth identity of a store owner. A missing identity surfaces as
// ErrUserNotFound.
func (v *FirebaseVerifier) DeleteUser(ctx context.Context, uid string) error {
	if err := v.ready(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultVerifyTimeout)
	defer cancel()
	err := v.client.DeleteUser(ctx, uid)
	if err != nil && v.isNotFound != nil && v.isNotFound(err) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, uid)
	}
	return err
}
