package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evereld/staffdesk/internal/auth/ticket"
	"github.com/evereld/staffdesk/internal/auth/user"
	"github.com/evereld/staffdesk/internal/storage"
)

type fakeSessionStore struct {
	records map[string]storage.SessionRecord
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{records: make(map[string]storage.SessionRecord)}
}

func (f *fakeSessionStore) PutSession(_ context.Context, record storage.SessionRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, sessionID string) (storage.SessionRecord, error) {
	record, ok := f.records[sessionID]
	if !ok {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeSessionStore) TouchSession(_ context.Context, sessionID string, expiresAt time.Time) error {
	record, ok := f.records[sessionID]
	if !ok {
		return storage.ErrNotFound
	}
	record.ExpiresAt = expiresAt
	f.records[sessionID] = record
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, sessionID string) error {
	delete(f.records, sessionID)
	return nil
}

func (f *fakeSessionStore) DeleteExpiredSessions(_ context.Context, now time.Time) error {
	for id, record := range f.records {
		if !record.ExpiresAt.After(now) {
			delete(f.records, id)
		}
	}
	return nil
}

func testIdentity() user.Identity {
	return user.Identity{ID: "u1", Email: "a@x.com", DisplayName: "Ada Lovelace"}
}

func newTestIssuer(t *testing.T, store *fakeSessionStore, clock *time.Time) *Issuer {
	t.Helper()
	now := func() time.Time { return *clock }
	signer, err := ticket.NewSigner(ticket.Config{Key: []byte("0123456789abcdef0123456789abcdef"), Now: now})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	issuer, err := NewIssuer(signer, store, 0, now)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestIssueShortTicket(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	issuer := newTestIssuer(t, store, &clock)

	tick, record, err := issuer.Issue(context.Background(), testIdentity(), false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tick.Persistent {
		t.Fatal("expected non-persistent ticket without remember-me")
	}
	if got := tick.ExpiresAt.Sub(clock); got != 30*time.Minute {
		t.Fatalf("expected 30m ticket expiry, got %v", got)
	}
	if record.UserID != "u1" || record.Email != "a@x.com" || record.DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected session record %+v", record)
	}
	if got := record.ExpiresAt.Sub(clock); got != DefaultIdleTimeout {
		t.Fatalf("expected idle timeout expiry, got %v", got)
	}
	if _, ok := store.records[record.ID]; !ok {
		t.Fatal("expected session record to be persisted")
	}
}

func TestIssueRememberMeTicket(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, newFakeSessionStore(), &clock)

	tick, record, err := issuer.Issue(context.Background(), testIdentity(), true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !tick.Persistent {
		t.Fatal("expected persistent ticket with remember-me")
	}
	if got := tick.ExpiresAt.Sub(clock); got != 30*24*time.Hour {
		t.Fatalf("expected 30d ticket expiry, got %v", got)
	}
	// The session idle timeout is unrelated to remember-me.
	if got := record.ExpiresAt.Sub(clock); got != DefaultIdleTimeout {
		t.Fatalf("expected idle timeout expiry, got %v", got)
	}
}

func TestResolveSlidesIdleExpiry(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	issuer := newTestIssuer(t, store, &clock)
	ctx := context.Background()

	_, record, err := issuer.Issue(ctx, testIdentity(), false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = clock.Add(10 * time.Minute)
	resolved, err := issuer.Resolve(ctx, record.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := resolved.ExpiresAt.Sub(clock); got != DefaultIdleTimeout {
		t.Fatalf("expected slid expiry, got %v", got)
	}
}

func TestResolveExpiredSessionIsGone(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	issuer := newTestIssuer(t, store, &clock)
	ctx := context.Background()

	_, record, err := issuer.Issue(ctx, testIdentity(), true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// The 30d ticket may still be valid while the idle session has lapsed;
	// the two lifetimes are independent.
	clock = clock.Add(31 * time.Minute)
	if _, err := issuer.Resolve(ctx, record.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for idle-expired session, got %v", err)
	}
	if _, ok := store.records[record.ID]; ok {
		t.Fatal("expected expired record to be deleted")
	}
}

func TestRevokeDeletesSession(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	issuer := newTestIssuer(t, store, &clock)
	ctx := context.Background()

	_, record, err := issuer.Issue(ctx, testIdentity(), false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := issuer.Revoke(ctx, record.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, ok := store.records[record.ID]; ok {
		t.Fatal("expected session record to be removed")
	}

	// Revoking an unknown or empty session id is a no-op.
	if err := issuer.Revoke(ctx, record.ID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if err := issuer.Revoke(ctx, ""); err != nil {
		t.Fatalf("empty revoke: %v", err)
	}
}

func TestSweepRemovesExpiredRecords(t *testing.T) {
	t.Parallel()

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	issuer := newTestIssuer(t, store, &clock)
	ctx := context.Background()

	_, old, err := issuer.Issue(ctx, testIdentity(), false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = clock.Add(time.Hour)
	_, fresh, err := issuer.Issue(ctx, testIdentity(), false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := issuer.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, ok := store.records[old.ID]; ok {
		t.Fatal("expected old record to be swept")
	}
	if _, ok := store.records[fresh.ID]; !ok {
		t.Fatal("expected fresh record to survive")
	}
}
