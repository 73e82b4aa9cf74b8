package kvstore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/bazzarna/storefront/internal/platform/firestore"
)

// DefaultFirestoreCollection holds one document per key.
const DefaultFirestoreCollection = "recentlyViewed"

type firestoreEntry struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Firestore stores each key as a document {value, updatedAt} in a single collection.
type Firestore struct {
	provider   *pfirestore.Provider
	collection string
	now        func() time.Time
}

// NewFirestore constructs a Firestore-backed store.
func NewFirestore(provider *pfirestore.Provider, collection string) *Firestore {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultFirestoreCollection
	}
	return &Firestore{
		provider:   provider,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get implements Store.
func (f *Firestore) Get(ctx context.Context, key string) (string, bool, error) {
	doc, err := f.doc(ctx, key)
	if err != nil {
		return "", false, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		wrapped := pfirestore.WrapError("kv get", err)
		if pfirestore.IsNotFound(wrapped) {
			return "", false, nil
		}
		return "", false, wrapped
	}
	var entry firestoreEntry
	if err := snap.DataTo(&entry); err != nil {
		return "", false, pfirestore.WrapError("kv decode", err)
	}
	return entry.Value, true, nil
}

// Set implements Store.
func (f *Firestore) Set(ctx context.Context, key, value string) error {
	doc, err := f.doc(ctx, key)
	if err != nil {
		return err
	}
	_, err = doc.Set(ctx, firestoreEntry{Value: value, UpdatedAt: f.now()})
	return pfirestore.WrapError("kv set", err)
}

// Remove implements Store.
func (f *Firestore) Remove(ctx context.Context, key string) error {
	doc, err := f.doc(ctx, key)
	if err != nil {
		return err
	}
	_, err = doc.Delete(ctx)
	return pfirestore.WrapError("kv delete", err)
}

// Ping implements Pinger.
func (f *Firestore) Ping(ctx context.Context) error {
	return f.provider.Ping(ctx)
}

func (f *Firestore) doc(ctx context.Context, key string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	client, err := f.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(f.collection).Doc(documentID(key)), nil
}

// documentID maps a key onto a valid Firestore document id. Slashes would otherwise be read
// as path separators.
func documentID(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}
