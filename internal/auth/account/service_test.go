package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evereld/staffdesk/internal/auth/user"
	"github.com/evereld/staffdesk/internal/storage"
)

type fakeUserStore struct {
	byEmail map[string]user.User
	// putErr forces the next PutUser to fail, simulating a lost race on the
	// unique email index.
	putErr error
	// missNext makes GetUserByEmail report NotFound the given number of
	// times per email, so a concurrent winner can appear "between" the
	// lookup and the insert.
	missNext map[string]int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]user.User), missNext: make(map[string]int)}
}

func (f *fakeUserStore) PutUser(_ context.Context, u user.User) error {
	if f.putErr != nil {
		err := f.putErr
		f.putErr = nil
		return err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return storage.ErrDuplicateEmail
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, userID string) (user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return user.User{}, storage.ErrNotFound
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	if f.missNext[email] > 0 {
		f.missNext[email]--
		return user.User{}, storage.ErrNotFound
	}
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	for email, u := range f.byEmail {
		if u.ID == userID {
			u.LastLoginAt = at
			f.byEmail[email] = u
			return nil
		}
	}
	return storage.ErrNotFound
}

func newTestService(store *fakeUserStore) *Service {
	return NewService(store, nil, func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestSignUpThenLogIn(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.SignUp(ctx, "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	identity, err := svc.LogIn(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("log in: %v", err)
	}
	if identity.Email != "a@x.com" {
		t.Fatalf("expected identity email a@x.com, got %q", identity.Email)
	}
	if identity.DisplayName != "Ada Lovelace" {
		t.Fatalf("expected display name, got %q", identity.DisplayName)
	}
}

func TestSignUpDoesNotLogIn(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)

	if err := svc.SignUp(context.Background(), "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	u := store.byEmail["a@x.com"]
	if !u.LastLoginAt.IsZero() {
		t.Fatal("expected signup not to record a login")
	}
}

func TestSignUpRejectsTakenEmail(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.SignUp(ctx, "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	before := store.byEmail["a@x.com"]

	err := svc.SignUp(ctx, "Eve", "Intruder", "a@x.com", "p2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if store.byEmail["a@x.com"] != before {
		t.Fatal("expected existing record to be unchanged")
	}
}

func TestSignUpMapsDuplicateInsertToEmailTaken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	store.putErr = storage.ErrDuplicateEmail
	svc := newTestService(store)

	err := svc.SignUp(context.Background(), "Ada", "Lovelace", "a@x.com", "p1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken from lost race, got %v", err)
	}
}

func TestSignUpValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	cases := []struct {
		name                          string
		first, last, email, plaintext string
	}{
		{"first name", "", "L", "a@x.com", "p"},
		{"last name", "F", "", "a@x.com", "p"},
		{"email", "F", "L", "  ", "p"},
		{"password", "F", "L", "a@x.com", ""},
	}
	for _, tc := range cases {
		if err := svc.SignUp(ctx, tc.first, tc.last, tc.email, tc.plaintext); err == nil {
			t.Fatalf("expected error for missing %s", tc.name)
		}
	}
}

func TestLogInFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.SignUp(ctx, "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	_, wrongPassword := svc.LogIn(ctx, "a@x.com", "wrong")
	_, unknownEmail := svc.LogIn(ctx, "nobody@x.com", "anything")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatal("expected identical error messages for both failure modes")
	}
}

func TestLogInTouchesLastLogin(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.SignUp(ctx, "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := svc.LogIn(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("log in: %v", err)
	}
	u := store.byEmail["a@x.com"]
	if u.LastLoginAt.IsZero() {
		t.Fatal("expected last login to be recorded")
	}
}

func TestFederationOnlyAccountCannotLogInLocally(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Federate(ctx, user.Profile{Email: "b@x.com", GivenName: "Bo", FamilyName: "Li"}); err != nil {
		t.Fatalf("federate: %v", err)
	}

	_, err := svc.LogIn(ctx, "b@x.com", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for federation-only account, got %v", err)
	}
}

func TestFederateProvisionsUser(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)

	identity, err := svc.Federate(context.Background(), user.Profile{
		Email:      "b@x.com",
		GivenName:  "Bo",
		FamilyName: "Li",
	})
	if err != nil {
		t.Fatalf("federate: %v", err)
	}
	if identity.DisplayName != "Bo Li" {
		t.Fatalf("expected display name Bo Li, got %q", identity.DisplayName)
	}
	u := store.byEmail["b@x.com"]
	if u.FirstName != "Bo" || u.LastName != "Li" {
		t.Fatalf("expected provisioned names, got %q %q", u.FirstName, u.LastName)
	}
	if u.PasswordHash != "" {
		t.Fatal("expected no password hash")
	}
}

func TestFederateRepeatKeepsNames(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	times := []time.Time{
		time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	svc := NewService(store, nil, func() time.Time {
		now := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return now
	})
	ctx := context.Background()

	if _, err := svc.Federate(ctx, user.Profile{Email: "b@x.com", GivenName: "Bo", FamilyName: "Li"}); err != nil {
		t.Fatalf("first federate: %v", err)
	}
	first := store.byEmail["b@x.com"]

	// The provider later supplies different name data; only the login
	// timestamp may change.
	if _, err := svc.Federate(ctx, user.Profile{Email: "b@x.com", DisplayName: "Bo L. Other"}); err != nil {
		t.Fatalf("second federate: %v", err)
	}
	second := store.byEmail["b@x.com"]

	if second.FirstName != "Bo" || second.LastName != "Li" {
		t.Fatalf("expected stable names, got %q %q", second.FirstName, second.LastName)
	}
	if !second.LastLoginAt.After(first.LastLoginAt) {
		t.Fatalf("expected last login to advance, got %v then %v", first.LastLoginAt, second.LastLoginAt)
	}
}

func TestFederateLinksExistingLocalAccount(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.SignUp(ctx, "Ada", "Lovelace", "a@x.com", "p1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	identity, err := svc.Federate(ctx, user.Profile{Email: "a@x.com", GivenName: "Other", FamilyName: "Name"})
	if err != nil {
		t.Fatalf("federate: %v", err)
	}
	if identity.DisplayName != "Ada Lovelace" {
		t.Fatalf("expected linked local identity, got %q", identity.DisplayName)
	}
	u := store.byEmail["a@x.com"]
	if u.PasswordHash == "" {
		t.Fatal("expected local password hash to be preserved")
	}
}

func TestFederateRequiresEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeUserStore())
	_, err := svc.Federate(context.Background(), user.Profile{DisplayName: "No Email"})
	if !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
}

func TestFederateRetriesLostInsertRaceAsUpdate(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Simulate losing the insert race: the first Put fails with a duplicate
	// even though the lookup saw nothing, then the record exists.
	winner, err := user.NewFederatedUser(user.Profile{Email: "c@x.com", GivenName: "Cy", FamilyName: "Ng"}, nil, nil)
	if err != nil {
		t.Fatalf("build winner: %v", err)
	}
	store.putErr = storage.ErrDuplicateEmail
	store.byEmail["c@x.com"] = winner
	store.missNext["c@x.com"] = 1

	identity, err := svc.Federate(ctx, user.Profile{Email: "c@x.com", GivenName: "Other"})
	if err != nil {
		t.Fatalf("federate after lost race: %v", err)
	}
	if identity.ID != winner.ID {
		t.Fatal("expected the winner's record to be reused")
	}
}
