package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/auth/user"
	apperrors "github.com/evereld/staffdesk/internal/platform/errors"
	"github.com/evereld/staffdesk/internal/platform/id"
	"github.com/evereld/staffdesk/internal/storage"
)

// ErrFederationFailed indicates the provider round-trip could not be
// completed: bad state, failed token exchange, or an unusable profile.
var ErrFederationFailed = apperrors.New(apperrors.CodeFederationFailed, "federated sign-in failed")

// Bridge drives the authorization-code flow against the provider. Pending
// flow state lives in storage, so the callback can land on any process.
type Bridge struct {
	config Config
	states storage.ProviderStateStore
	client *http.Client
	now    func() time.Time
	newID  func() (string, error)
}

// NewBridge creates a provider bridge. A nil client falls back to
// http.DefaultClient.
func NewBridge(cfg Config, states storage.ProviderStateStore, client *http.Client, now func() time.Time) (*Bridge, error) {
	if states == nil {
		return nil, errors.New("provider state store is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &Bridge{
		config: cfg.withDefaults(),
		states: states,
		client: client,
		now:    now,
		newID:  id.NewID,
	}, nil
}

// Begin starts a federation flow: it persists fresh state and PKCE verifier
// and returns the provider authorization URL to redirect the browser to.
func (b *Bridge) Begin(ctx context.Context) (string, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	state, err := b.newID()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	now := b.now().UTC()
	record := storage.ProviderState{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(b.config.StateTTL),
	}
	if err := b.states.PutProviderState(ctx, record); err != nil {
		return "", fmt.Errorf("put provider state: %w", err)
	}

	authorizeURL, err := url.Parse(b.config.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}
	q := authorizeURL.Query()
	q.Set("response_type", "code")
	q.Set("client_id", b.config.ClientID)
	q.Set("redirect_uri", b.config.RedirectURI)
	q.Set("scope", b.config.Scopes)
	q.Set("code_challenge", ComputeS256Challenge(verifier))
	q.Set("code_challenge_method", "S256")
	q.Set("state", state)
	authorizeURL.RawQuery = q.Encode()

	return authorizeURL.String(), nil
}

// Complete finishes a federation flow: it consumes the pending state,
// exchanges the authorization code for an access token, and fetches the
// provider profile. Any failure along the way surfaces as
// ErrFederationFailed; the caller never sees provider detail.
func (b *Bridge) Complete(ctx context.Context, state, code string) (user.Profile, error) {
	state = strings.TrimSpace(state)
	code = strings.TrimSpace(code)
	if state == "" || code == "" {
		return user.Profile{}, ErrFederationFailed
	}

	pending, err := b.states.GetProviderState(ctx, state)
	if err != nil {
		return user.Profile{}, ErrFederationFailed
	}
	// State is single use regardless of outcome.
	_ = b.states.DeleteProviderState(ctx, state)

	if !pending.ExpiresAt.After(b.now().UTC()) {
		return user.Profile{}, ErrFederationFailed
	}

	token, err := b.exchangeCode(ctx, code, pending.CodeVerifier)
	if err != nil {
		return user.Profile{}, err
	}
	return b.fetchProfile(ctx, token)
}

// Sweep removes expired pending flow state.
func (b *Bridge) Sweep(ctx context.Context) error {
	return b.states.DeleteExpiredProviderStates(ctx, b.now().UTC())
}

func (b *Bridge) exchangeCode(ctx context.Context, code, verifier string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {b.config.RedirectURI},
		"code_verifier": {verifier},
		"client_id":     {b.config.ClientID},
		"client_secret": {b.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", ErrFederationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %s", ErrFederationFailed, resp.Status)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrFederationFailed, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrFederationFailed)
	}
	return tokenResp.AccessToken, nil
}

func (b *Bridge) fetchProfile(ctx context.Context, accessToken string) (user.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.config.UserinfoURL, nil)
	if err != nil {
		return user.Profile{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return user.Profile{}, fmt.Errorf("%w: fetch userinfo: %v", ErrFederationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return user.Profile{}, fmt.Errorf("%w: userinfo endpoint returned %s", ErrFederationFailed, resp.Status)
	}

	var info struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return user.Profile{}, fmt.Errorf("%w: decode userinfo response: %v", ErrFederationFailed, err)
	}

	return user.Profile{
		Email:       strings.TrimSpace(info.Email),
		DisplayName: strings.TrimSpace(info.Name),
		GivenName:   strings.TrimSpace(info.GivenName),
		FamilyName:  strings.TrimSpace(info.FamilyName),
	}, nil
}
