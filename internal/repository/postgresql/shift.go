package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const shiftColumns = `
	id, organization_id, name, start_time, end_time,
	late_grace_period, early_out_grace_period,
	COALESCE(earliest_check_in, ''), COALESCE(auto_session_close_time, ''),
	working_days, is_default, created_at, updated_at`

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.StartTime, &s.EndTime,
		&s.LateGracePeriod, &s.EarlyOutGracePeriod,
		&s.EarliestCheckIn, &s.AutoSessionCloseTime,
		&s.WorkingDays, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// nullableClock stores an empty optional clock as NULL.
func nullableClock(clock string) *string {
	if clock == "" {
		return nil
	}
	return &clock
}

// List implements shift.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, organizationID string) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE organization_id = $1
		ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id, organizationID string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE id = $1 AND organization_id = $2`

	s, err := scanShift(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return s, nil
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (
			id, organization_id, name, start_time, end_time,
			late_grace_period, early_out_grace_period,
			earliest_check_in, auto_session_close_time,
			working_days, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		s.ID, s.OrganizationID, s.Name, s.StartTime, s.EndTime,
		s.LateGracePeriod, s.EarlyOutGracePeriod,
		nullableClock(s.EarliestCheckIn), nullableClock(s.AutoSessionCloseTime),
		workingDays(s.WorkingDays), s.IsDefault,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return s, nil
}

// Update implements shift.ShiftRepository. IsDefault is changed only through
// ClearDefaults and MarkDefault.
func (r *shiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts SET
			name = $3, start_time = $4, end_time = $5,
			late_grace_period = $6, early_out_grace_period = $7,
			earliest_check_in = $8, auto_session_close_time = $9,
			working_days = $10, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + shiftColumns

	updated, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.OrganizationID, s.Name, s.StartTime, s.EndTime,
		s.LateGracePeriod, s.EarlyOutGracePeriod,
		nullableClock(s.EarliestCheckIn), nullableClock(s.AutoSessionCloseTime),
		workingDays(s.WorkingDays),
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return shift.Shift{}, shift.ErrShiftNotFound
		case isUniqueViolation(err):
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}
	return updated, nil
}

// Delete implements shift.ShiftRepository.
func (r *shiftRepository) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// ClearDefaults implements shift.ShiftRepository.
func (r *shiftRepository) ClearDefaults(ctx context.Context, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE shifts SET is_default = FALSE, updated_at = NOW() WHERE organization_id = $1 AND is_default`
	if _, err := q.Exec(ctx, query, organizationID); err != nil {
		return fmt.Errorf("failed to clear default shifts: %w", err)
	}
	return nil
}

// MarkDefault implements shift.ShiftRepository.
func (r *shiftRepository) MarkDefault(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE shifts SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND organization_id = $2`
	tag, err := q.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to mark default shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// workingDays keeps the column NOT NULL for an empty set.
func workingDays(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
