// Package account reconciles local credentials and federated provider
// profiles into exactly one user record per email.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/auth/password"
	"github.com/evereld/staffdesk/internal/auth/user"
	apperrors "github.com/evereld/staffdesk/internal/platform/errors"
	"github.com/evereld/staffdesk/internal/storage"
)

var (
	// ErrEmailTaken indicates a signup against an already-registered email.
	ErrEmailTaken = apperrors.New(apperrors.CodeEmailTaken, "email address is already registered")
	// ErrInvalidCredentials indicates a failed local login. It is deliberately
	// identical for unknown emails and wrong passwords.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	// ErrMissingEmail indicates a federated profile without an email address.
	ErrMissingEmail = apperrors.New(apperrors.CodeMissingEmail, "provider profile has no email address")

	errEmptyFirstName = apperrors.New(apperrors.CodeUserEmptyFirstName, "first name is required")
	errEmptyLastName  = apperrors.New(apperrors.CodeUserEmptyLastName, "last name is required")
	errEmptyEmail     = apperrors.New(apperrors.CodeUserEmptyEmail, "email is required")
	errEmptyPassword  = apperrors.New(apperrors.CodeUserEmptyPassword, "password is required")
)

// Service is the identity reconciler: both credential paths converge here
// and produce the canonical identity used to issue tickets and sessions.
type Service struct {
	users  storage.UserStore
	hasher password.Hasher
	now    func() time.Time
}

// NewService creates a reconciler over the given user store and hasher.
func NewService(users storage.UserStore, hasher password.Hasher, now func() time.Time) *Service {
	if hasher == nil {
		hasher = password.SHA256Hasher{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, hasher: hasher, now: now}
}

// SignUp registers a local account. It does not log the user in; signup and
// login are separate flows.
func (s *Service) SignUp(ctx context.Context, firstName, lastName, email, plaintext string) error {
	if strings.TrimSpace(firstName) == "" {
		return errEmptyFirstName
	}
	if strings.TrimSpace(lastName) == "" {
		return errEmptyLastName
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errEmptyEmail
	}
	if plaintext == "" {
		return errEmptyPassword
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("look up email: %w", err)
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u, err := user.NewLocalUser(firstName, lastName, email, digest, s.now, nil)
	if err != nil {
		return err
	}

	if err := s.users.PutUser(ctx, u); err != nil {
		// A concurrent signup can win between the lookup and the insert; the
		// unique email index is the arbiter.
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// LogIn verifies local credentials and returns the canonical identity.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) LogIn(ctx context.Context, email, plaintext string) (user.Identity, error) {
	email = strings.TrimSpace(email)

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.Identity{}, ErrInvalidCredentials
		}
		return user.Identity{}, fmt.Errorf("look up email: %w", err)
	}

	if !s.hasher.Verify(plaintext, u.PasswordHash) {
		return user.Identity{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, u.ID, s.now().UTC()); err != nil {
		return user.Identity{}, fmt.Errorf("touch last login: %w", err)
	}
	return u.Identity(), nil
}

// Federate reconciles a provider profile into a user record. A first
// federated login provisions the account; repeat logins only advance
// LastLoginAt and never overwrite the name fields. Federation silently links
// to a pre-existing local account with the same email: one email, one
// identity, regardless of origin.
func (s *Service) Federate(ctx context.Context, profile user.Profile) (user.Identity, error) {
	if strings.TrimSpace(profile.Email) == "" {
		return user.Identity{}, ErrMissingEmail
	}

	existing, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(profile.Email))
	if err == nil {
		if err := s.users.TouchLastLogin(ctx, existing.ID, s.now().UTC()); err != nil {
			return user.Identity{}, fmt.Errorf("touch last login: %w", err)
		}
		return existing.Identity(), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.Identity{}, fmt.Errorf("look up email: %w", err)
	}

	created, err := user.NewFederatedUser(profile, s.now, nil)
	if err != nil {
		return user.Identity{}, err
	}

	if err := s.users.PutUser(ctx, created); err != nil {
		// A concurrent federated login for the same email may have inserted
		// first. Treat the constraint violation as "found existing" and
		// retry as an update.
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return s.federateExisting(ctx, created.Email)
		}
		return user.Identity{}, fmt.Errorf("insert user: %w", err)
	}
	return created.Identity(), nil
}

func (s *Service) federateExisting(ctx context.Context, email string) (user.Identity, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return user.Identity{}, fmt.Errorf("look up email after duplicate insert: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, existing.ID, s.now().UTC()); err != nil {
		return user.Identity{}, fmt.Errorf("touch last login: %w", err)
	}
	return existing.Identity(), nil
}
