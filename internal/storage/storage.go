// Package storage defines the persistence contracts for staff, session, and
// admin entity records.
package storage

import (
	"context"
	"time"

	"github.com/evereld/staffdesk/internal/auth/user"
	"github.com/evereld/staffdesk/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrDuplicateEmail indicates an insert violated the unique email index.
var ErrDuplicateEmail = errors.New(errors.CodeDuplicateEmail, "email already exists")

// UserStore persists staff user records. The unique email index is the
// arbiter for concurrent signups and federated first logins.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// SessionRecord is the server-side half of a login: denormalized identity
// fields keyed by session id, expiring on idle independent of the ticket.
type SessionRecord struct {
	ID          string
	UserID      string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// SessionStore persists web session records.
type SessionStore interface {
	PutSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)
	TouchSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

// ProviderState carries one federation flow across the provider redirect
// round-trip. Each flow has its own row, so concurrent attempts by
// different clients do not interfere.
type ProviderState struct {
	State        string
	CodeVerifier string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// ProviderStateStore persists pending federation flow state.
type ProviderStateStore interface {
	PutProviderState(ctx context.Context, state ProviderState) error
	GetProviderState(ctx context.Context, state string) (ProviderState, error)
	DeleteProviderState(ctx context.Context, state string) error
	DeleteExpiredProviderStates(ctx context.Context, now time.Time) error
}

// Client is a customer a project is delivered for.
type Client struct {
	ID        string
	Image     string
	Name      string
	CreatedAt time.Time
}

// Member is a staff member assignable to projects.
type Member struct {
	ID        string
	Image     string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobTitle  string
	Address   string
	BirthDate time.Time
	CreatedAt time.Time
}

// Status is a project lifecycle state. The canonical set is seeded by
// migration: Not Started, In Progress, Completed, On Hold.
type Status struct {
	ID   string
	Name string
}

// Project ties a client, an optional member, and a status together with
// schedule and budget data. Description stores rich-text HTML as-is.
type Project struct {
	ID          string
	Image       string
	Name        string
	ClientID    string
	MemberID    string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64
	StatusID    string
	CreatedAt   time.Time
}

// ClientStore persists client records.
type ClientStore interface {
	PutClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, clientID string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, client Client) error
	DeleteClient(ctx context.Context, clientID string) error
}

// MemberStore persists member records.
type MemberStore interface {
	PutMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, memberID string) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	UpdateMember(ctx context.Context, member Member) error
	DeleteMember(ctx context.Context, memberID string) error
}

// StatusStore reads the seeded project statuses.
type StatusStore interface {
	ListStatuses(ctx context.Context) ([]Status, error)
}

// ProjectStore persists project records.
type ProjectStore interface {
	PutProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, projectID string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	UpdateProject(ctx context.Context, project Project) error
	DeleteProject(ctx context.Context, projectID string) error
}
