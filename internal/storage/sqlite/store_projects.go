package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/evereld/staffdesk/internal/storage"
)

// PutProject inserts a project record.
func (s *Store) PutProject(ctx context.Context, project storage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(project.ID) == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO projects (id, image, name, client_id, member_id, description, start_date, end_date, budget, status_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		project.ID,
		project.Image,
		project.Name,
		project.ClientID,
		project.MemberID,
		project.Description,
		toMillis(project.StartDate),
		toMillis(project.EndDate),
		project.Budget,
		project.StatusID,
		toMillis(project.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put project: %w", err)
	}
	return nil
}

// GetProject fetches a project record by ID.
func (s *Store) GetProject(ctx context.Context, projectID string) (storage.Project, error) {
	if err := ctx.Err(); err != nil {
		return storage.Project{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Project{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(projectID) == "" {
		return storage.Project{}, fmt.Errorf("project id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, image, name, client_id, member_id, description, start_date, end_date, budget, status_id, created_at
FROM projects
WHERE id = ?
`, projectID)
	return scanProject(row.Scan)
}

// ListProjects returns all project records ordered by creation time.
func (s *Store) ListProjects(ctx context.Context) ([]storage.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, image, name, client_id, member_id, description, start_date, end_date, budget, status_id, created_at
FROM projects
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []storage.Project
	for rows.Next() {
		project, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject rewrites a project record in place.
func (s *Store) UpdateProject(ctx context.Context, project storage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(project.ID) == "" {
		return fmt.Errorf("project id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE projects
SET image = ?, name = ?, client_id = ?, member_id = ?, description = ?, start_date = ?, end_date = ?, budget = ?, status_id = ?
WHERE id = ?
`,
		project.Image,
		project.Name,
		project.ClientID,
		project.MemberID,
		project.Description,
		toMillis(project.StartDate),
		toMillis(project.EndDate),
		project.Budget,
		project.StatusID,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteProject removes a project record.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("project id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListStatuses returns the seeded project statuses in insertion order.
func (s *Store) ListStatuses(ctx context.Context) ([]storage.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name FROM statuses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []storage.Status
	for rows.Next() {
		var status storage.Status
		if err := rows.Scan(&status.ID, &status.Name); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return statuses, nil
}

func scanProject(scan func(dest ...any) error) (storage.Project, error) {
	var project storage.Project
	var startDate int64
	var endDate int64
	var createdAt int64
	if err := scan(
		&project.ID,
		&project.Image,
		&project.Name,
		&project.ClientID,
		&project.MemberID,
		&project.Description,
		&startDate,
		&endDate,
		&project.Budget,
		&project.StatusID,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Project{}, storage.ErrNotFound
		}
		return storage.Project{}, fmt.Errorf("scan project: %w", err)
	}
	project.StartDate = fromMillis(startDate)
	project.EndDate = fromMillis(endDate)
	project.CreatedAt = fromMillis(createdAt)
	return project, nil
}
