package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/evereld/staffdesk/internal/storage"
)

// PutClient inserts a client record.
func (s *Store) PutClient(ctx context.Context, client storage.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(client.ID) == "" {
		return fmt.Errorf("client id is required")
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("client name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO clients (id, image, name, created_at)
VALUES (?, ?, ?, ?)
`,
		client.ID,
		client.Image,
		client.Name,
		toMillis(client.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put client: %w", err)
	}
	return nil
}

// GetClient fetches a client record by ID.
func (s *Store) GetClient(ctx context.Context, clientID string) (storage.Client, error) {
	if err := ctx.Err(); err != nil {
		return storage.Client{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Client{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(clientID) == "" {
		return storage.Client{}, fmt.Errorf("client id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, image, name, created_at
FROM clients
WHERE id = ?
`, clientID)

	var client storage.Client
	var createdAt int64
	if err := row.Scan(&client.ID, &client.Image, &client.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Client{}, storage.ErrNotFound
		}
		return storage.Client{}, fmt.Errorf("get client: %w", err)
	}
	client.CreatedAt = fromMillis(createdAt)
	return client, nil
}

// ListClients returns all client records ordered by creation time.
func (s *Store) ListClients(ctx context.Context) ([]storage.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, image, name, created_at
FROM clients
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []storage.Client
	for rows.Next() {
		var client storage.Client
		var createdAt int64
		if err := rows.Scan(&client.ID, &client.Image, &client.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client.CreatedAt = fromMillis(createdAt)
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// UpdateClient rewrites a client record in place.
func (s *Store) UpdateClient(ctx context.Context, client storage.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(client.ID) == "" {
		return fmt.Errorf("client id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE clients SET image = ?, name = ?
WHERE id = ?
`,
		client.Image,
		client.Name,
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteClient removes a client record.
func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("client id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
