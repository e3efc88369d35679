// AngelaMos | 2026
// repository.go

package assist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/roadassist-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, filters ListFilters) ([]Request, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	AssignTechnician(ctx context.Context, id, technicianID string) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const requestColumns = `
	id, customer_id, technician_id, service_type, status,
	location, description, created_at, updated_at, completed_at`

func (r *repository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO assist_requests (
			id, customer_id, service_type, status, location, description
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at, updated_at`

	row := struct {
		CreatedAt sql.NullTime `db:"created_at"`
		UpdatedAt sql.NullTime `db:"updated_at"`
	}{}

	err := r.db.GetContext(ctx, &row, query,
		req.ID,
		req.CustomerID,
		req.ServiceType,
		req.Status,
		req.Location,
		req.Description,
	)
	if err != nil {
		return fmt.Errorf("create assist request: %w", err)
	}

	req.CreatedAt = row.CreatedAt.Time
	req.UpdatedAt = row.UpdatedAt.Time
	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Request, error) {
	query := `SELECT` + requestColumns + `
		FROM assist_requests
		WHERE id = $1`

	var req Request
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assist request %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assist request: %w", err)
	}

	return &req, nil
}

func (r *repository) List(
	ctx context.Context,
	filters ListFilters,
) ([]Request, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(
			conditions,
			fmt.Sprintf("%s = $%d", column, len(args)),
		)
	}

	add("status", filters.Status)
	add("service_type", filters.ServiceType)
	add("customer_id", filters.CustomerID)
	add("technician_id", filters.TechnicianID)

	query := `SELECT` + requestColumns + ` FROM assist_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var requests []Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list assist requests: %w", err)
	}

	return requests, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	status Status,
) error {
	query := `
		UPDATE assist_requests
		SET status = $2,
			updated_at = NOW(),
			completed_at = CASE WHEN $2 = 'completed' THEN NOW()
				ELSE completed_at END
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update request status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) AssignTechnician(
	ctx context.Context,
	id, technicianID string,
) error {
	query := `
		UPDATE assist_requests
		SET technician_id = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, technicianID)
	if err != nil {
		return fmt.Errorf("assign technician: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign technician: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("assign technician: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountByStatus(
	ctx context.Context,
) (map[Status]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM assist_requests
		GROUP BY status`

	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
