// Package session turns a reconciled identity into the two artifacts the
// rest of the app trusts: a signed authentication ticket and a server-side
// session record.
//
// The two artifacts are issued together but expire independently: the
// ticket's lifetime follows the remember-me choice, while the session
// record slides on a fixed process-wide idle timeout. They can fall out of
// sync; that is accepted behavior, not a bug.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evereld/staffdesk/internal/auth/ticket"
	"github.com/evereld/staffdesk/internal/auth/user"
	"github.com/evereld/staffdesk/internal/platform/id"
	"github.com/evereld/staffdesk/internal/storage"
)

const (
	// RememberMeTTL is the ticket lifetime for persistent logins.
	RememberMeTTL = 30 * 24 * time.Hour
	// ShortTTL is the ticket lifetime for browser-session logins.
	ShortTTL = 30 * time.Minute
	// DefaultIdleTimeout is the sliding idle expiry for session records,
	// unrelated to the remember-me choice.
	DefaultIdleTimeout = 30 * time.Minute
)

// Ticket is the client-held artifact of a login.
type Ticket struct {
	Value     string
	ExpiresAt time.Time
	// Persistent controls whether the client keeps the ticket across
	// browser restarts.
	Persistent bool
}

// Issuer converts canonical identities into tickets and session records.
type Issuer struct {
	signer      *ticket.Signer
	sessions    storage.SessionStore
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() (string, error)
}

// NewIssuer creates a session issuer. A zero idleTimeout falls back to
// DefaultIdleTimeout.
func NewIssuer(signer *ticket.Signer, sessions storage.SessionStore, idleTimeout time.Duration, now func() time.Time) (*Issuer, error) {
	if signer == nil {
		return nil, errors.New("ticket signer is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		signer:      signer,
		sessions:    sessions,
		idleTimeout: idleTimeout,
		now:         now,
		newID:       id.NewID,
	}, nil
}

// Issue signs a ticket and writes a session record for the identity.
// Remember-me extends the ticket to thirty days and makes it persistent;
// otherwise the ticket lasts thirty minutes and is scoped to the browser
// session. The session record is written either way.
func (i *Issuer) Issue(ctx context.Context, identity user.Identity, rememberMe bool) (Ticket, storage.SessionRecord, error) {
	now := i.now().UTC()

	ttl := ShortTTL
	if rememberMe {
		ttl = RememberMeTTL
	}
	expiresAt := now.Add(ttl)

	value, err := i.signer.Issue(identity, expiresAt)
	if err != nil {
		return Ticket{}, storage.SessionRecord{}, fmt.Errorf("issue ticket: %w", err)
	}

	sessionID, err := i.newID()
	if err != nil {
		return Ticket{}, storage.SessionRecord{}, fmt.Errorf("generate session id: %w", err)
	}

	record := storage.SessionRecord{
		ID:          sessionID,
		UserID:      identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(i.idleTimeout),
	}
	if err := i.sessions.PutSession(ctx, record); err != nil {
		return Ticket{}, storage.SessionRecord{}, fmt.Errorf("put session: %w", err)
	}

	return Ticket{Value: value, ExpiresAt: expiresAt, Persistent: rememberMe}, record, nil
}

// Resolve loads a live session record and slides its idle expiry forward.
// Expired records are removed and reported as storage.ErrNotFound.
func (i *Issuer) Resolve(ctx context.Context, sessionID string) (storage.SessionRecord, error) {
	record, err := i.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return storage.SessionRecord{}, err
	}

	now := i.now().UTC()
	if !record.ExpiresAt.After(now) {
		_ = i.sessions.DeleteSession(ctx, sessionID)
		return storage.SessionRecord{}, storage.ErrNotFound
	}

	record.ExpiresAt = now.Add(i.idleTimeout)
	if err := i.sessions.TouchSession(ctx, sessionID, record.ExpiresAt); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("touch session: %w", err)
	}
	return record, nil
}

// Revoke deletes the session record. The ticket cannot be revoked
// server-side; the caller clears the client's cookies instead.
func (i *Issuer) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := i.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep removes expired session records.
func (i *Issuer) Sweep(ctx context.Context) error {
	return i.sessions.DeleteExpiredSessions(ctx, i.now().UTC())
}
