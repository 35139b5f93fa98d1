package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/evereld/staffdesk/internal/storage"
)

// PutMember inserts a member record.
func (s *Store) PutMember(ctx context.Context, member storage.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(member.ID) == "" {
		return fmt.Errorf("member id is required")
	}
	if strings.TrimSpace(member.FirstName) == "" {
		return fmt.Errorf("member first name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO members (id, image, first_name, last_name, email, phone, job_title, address, birth_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		member.ID,
		member.Image,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.JobTitle,
		member.Address,
		toMillis(member.BirthDate),
		toMillis(member.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// GetMember fetches a member record by ID.
func (s *Store) GetMember(ctx context.Context, memberID string) (storage.Member, error) {
	if err := ctx.Err(); err != nil {
		return storage.Member{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Member{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(memberID) == "" {
		return storage.Member{}, fmt.Errorf("member id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, image, first_name, last_name, email, phone, job_title, address, birth_date, created_at
FROM members
WHERE id = ?
`, memberID)
	return scanMember(row.Scan)
}

// ListMembers returns all member records ordered by creation time.
func (s *Store) ListMembers(ctx context.Context) ([]storage.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, image, first_name, last_name, email, phone, job_title, address, birth_date, created_at
FROM members
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []storage.Member
	for rows.Next() {
		member, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// UpdateMember rewrites a member record in place.
func (s *Store) UpdateMember(ctx context.Context, member storage.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(member.ID) == "" {
		return fmt.Errorf("member id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE members
SET image = ?, first_name = ?, last_name = ?, email = ?, phone = ?, job_title = ?, address = ?, birth_date = ?
WHERE id = ?
`,
		member.Image,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.JobTitle,
		member.Address,
		toMillis(member.BirthDate),
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteMember removes a member record.
func (s *Store) DeleteMember(ctx context.Context, memberID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(memberID) == "" {
		return fmt.Errorf("member id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanMember(scan func(dest ...any) error) (storage.Member, error) {
	var member storage.Member
	var birthDate int64
	var createdAt int64
	if err := scan(
		&member.ID,
		&member.Image,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.Phone,
		&member.JobTitle,
		&member.Address,
		&birthDate,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Member{}, storage.ErrNotFound
		}
		return storage.Member{}, fmt.Errorf("scan member: %w", err)
	}
	member.BirthDate = fromMillis(birthDate)
	member.CreatedAt = fromMillis(createdAt)
	return member, nil
}
