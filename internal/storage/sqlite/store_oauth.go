package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/storage"
)

// PutProviderState persists a pending federation flow.
func (s *Store) PutProviderState(ctx context.Context, state storage.ProviderState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(state.State) == "" {
		return fmt.Errorf("state is required")
	}
	if strings.TrimSpace(state.CodeVerifier) == "" {
		return fmt.Errorf("code verifier is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO provider_states (state, code_verifier, created_at, expires_at)
VALUES (?, ?, ?, ?)
`,
		state.State,
		state.CodeVerifier,
		toMillis(state.CreatedAt),
		toMillis(state.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put provider state: %w", err)
	}
	return nil
}

// GetProviderState fetches a pending federation flow by state value.
func (s *Store) GetProviderState(ctx context.Context, state string) (storage.ProviderState, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProviderState{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProviderState{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(state) == "" {
		return storage.ProviderState{}, fmt.Errorf("state is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT state, code_verifier, created_at, expires_at
FROM provider_states
WHERE state = ?
`, state)

	var record storage.ProviderState
	var createdAt int64
	var expiresAt int64
	if err := row.Scan(&record.State, &record.CodeVerifier, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProviderState{}, storage.ErrNotFound
		}
		return storage.ProviderState{}, fmt.Errorf("get provider state: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.ExpiresAt = fromMillis(expiresAt)
	return record, nil
}

// DeleteProviderState removes a pending flow. Missing state is not an error.
func (s *Store) DeleteProviderState(ctx context.Context, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(state) == "" {
		return fmt.Errorf("state is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM provider_states WHERE state = ?`, state); err != nil {
		return fmt.Errorf("delete provider state: %w", err)
	}
	return nil
}

// DeleteExpiredProviderStates removes pending flows whose expiry is at or
// before the given instant.
func (s *Store) DeleteExpiredProviderStates(ctx context.Context, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM provider_states WHERE expires_at <= ?`, toMillis(now),
	); err != nil {
		return fmt.Errorf("delete expired provider states: %w", err)
	}
	return nil
}
