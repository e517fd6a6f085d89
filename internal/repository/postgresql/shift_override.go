package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overrideColumns = `
	id, organization_id, employee_id, shift_id,
	to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	reason, created_at`

type overrideRepository struct {
	db *database.DB
}

func NewOverrideRepository(db *database.DB) shift.OverrideRepository {
	return &overrideRepository{db: db}
}

// ListByOrganization implements shift.OverrideRepository.
func (r *overrideRepository) ListByOrganization(ctx context.Context, organizationID string) ([]shift.ShiftOverride, error) {
	query := `SELECT ` + overrideColumns + `
		FROM shift_overrides
		WHERE organization_id = $1
		ORDER BY start_date, created_at, id`

	return r.list(ctx, query, organizationID)
}

// ListByEmployee implements shift.OverrideRepository.
func (r *overrideRepository) ListByEmployee(ctx context.Context, employeeID, organizationID string) ([]shift.ShiftOverride, error) {
	query := `SELECT ` + overrideColumns + `
		FROM shift_overrides
		WHERE employee_id = $1 AND organization_id = $2
		ORDER BY start_date, created_at, id`

	return r.list(ctx, query, employeeID, organizationID)
}

func (r *overrideRepository) list(ctx context.Context, query string, args ...any) ([]shift.ShiftOverride, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift overrides: %w", err)
	}

	overrides, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shift.ShiftOverride, error) {
		var o shift.ShiftOverride
		err := row.Scan(&o.ID, &o.OrganizationID, &o.EmployeeID, &o.ShiftID, &o.StartDate, &o.EndDate, &o.Reason, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift overrides: %w", err)
	}
	return overrides, nil
}

// Create implements shift.OverrideRepository.
func (r *overrideRepository) Create(ctx context.Context, o shift.ShiftOverride) (shift.ShiftOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_overrides (id, organization_id, employee_id, shift_id, start_date, end_date, reason)
		VALUES ($1, $2, $3, $4, $5::date, $6::date, $7)
		RETURNING created_at`

	err := q.QueryRow(ctx, query,
		o.ID, o.OrganizationID, o.EmployeeID, o.ShiftID, o.StartDate, o.EndDate, o.Reason,
	).Scan(&o.CreatedAt)
	if err != nil {
		return shift.ShiftOverride{}, fmt.Errorf("failed to create shift override: %w", err)
	}
	return o, nil
}

// Delete implements shift.OverrideRepository.
func (r *overrideRepository) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_overrides WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete shift override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrOverrideNotFound
	}
	return nil
}
