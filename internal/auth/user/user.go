// Package user provides the staff user identity model.
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/platform/id"
)

// Federated accounts without a given or family name fall back to literal
// placeholders derived from the provider display name.
const (
	fallbackFirstName = "Google"
	fallbackLastName  = "User"
)

// User represents a staff account record.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	// PasswordHash is empty for accounts created purely via federation.
	// Such accounts can never pass local credential login.
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

// Identity is the canonical reconciled identity handed to the session
// issuer, regardless of credential origin.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}

// DisplayName joins the first and last name for claims and session records.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the canonical identity tuple for the user.
func (u User) Identity() Identity {
	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
	}
}

// NewLocalUser creates a user record for a local signup. The caller supplies
// the already-hashed password.
func NewLocalUser(firstName, lastName, email, passwordHash string, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	return User{
		ID:           userID,
		Email:        strings.TrimSpace(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
		CreatedAt:    now().UTC(),
	}, nil
}

// Profile is the identity asserted by a federated provider.
type Profile struct {
	Email       string
	DisplayName string
	GivenName   string
	FamilyName  string
}

// NewFederatedUser creates a user record from a provider profile. Missing
// name parts fall back to tokens of the display name, then to placeholders.
// The record carries no password hash and counts the creation as a login.
func NewFederatedUser(profile Profile, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:          userID,
		Email:       strings.TrimSpace(profile.Email),
		FirstName:   firstNameFromProfile(profile),
		LastName:    lastNameFromProfile(profile),
		CreatedAt:   createdAt,
		LastLoginAt: createdAt,
	}, nil
}

func firstNameFromProfile(profile Profile) string {
	if name := strings.TrimSpace(profile.GivenName); name != "" {
		return name
	}
	if tokens := strings.Fields(profile.DisplayName); len(tokens) > 0 {
		return tokens[0]
	}
	return fallbackFirstName
}

func lastNameFromProfile(profile Profile) string {
	if name := strings.TrimSpace(profile.FamilyName); name != "" {
		return name
	}
	if tokens := strings.Fields(profile.DisplayName); len(tokens) > 0 {
		return tokens[len(tokens)-1]
	}
	return fallbackLastName
}
