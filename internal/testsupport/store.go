package testsupport

import (
	"context"
	"testing"
	"time"

	"recite/internal/config"
	"recite/internal/metastore"
)

// MustOpenStore opens a metastore.Store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *metastore.Store {
	t.Helper()

	store, err := metastore.Open(cfg)
	if err != nil {
		t.Fatalf("metastore.Open: %v", err)
	}
	return store
}

// RegisterContributor adds a contributor directly to the store document.
func RegisterContributor(t testing.TB, store *metastore.Store, handle string, gender metastore.Gender) {
	t.Helper()

	_, err := store.Mutate(context.Background(), func(doc *metastore.Document) error {
		doc.Contributors[handle] = metastore.Contributor{
			Handle:       handle,
			DisplayName:  handle,
			Gender:       gender,
			RegisteredAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		t.Fatalf("register contributor %s: %v", handle, err)
	}
}

// AddRecording appends a recording directly to the store document.
func AddRecording(t testing.TB, store *metastore.Store, rec metastore.Recording) {
	t.Helper()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := store.Mutate(context.Background(), func(doc *metastore.Document) error {
		doc.Recordings = append(doc.Recordings, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("add recording %s: %v", rec.ID, err)
	}
}
