package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type assignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &assignmentRepository{db: db}
}

// GetAssignedShiftID implements shift.AssignmentRepository. It returns nil
// when the employee has no assignment.
func (r *assignmentRepository) GetAssignedShiftID(ctx context.Context, employeeID, organizationID string) (*string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT shift_id FROM employee_shift_assignments WHERE employee_id = $1 AND organization_id = $2`

	var shiftID string
	err := q.QueryRow(ctx, query, employeeID, organizationID).Scan(&shiftID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assigned shift: %w", err)
	}
	return &shiftID, nil
}

// ListAssignments implements shift.AssignmentRepository.
func (r *assignmentRepository) ListAssignments(ctx context.Context, organizationID string) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id, shift_id FROM employee_shift_assignments WHERE organization_id = $1`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[string]string)
	for rows.Next() {
		var employeeID, shiftID string
		if err := rows.Scan(&employeeID, &shiftID); err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments[employeeID] = shiftID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift assignments: %w", err)
	}
	return assignments, nil
}

// SetAssignedShiftID implements shift.AssignmentRepository. A nil shiftID
// removes the assignment.
func (r *assignmentRepository) SetAssignedShiftID(ctx context.Context, employeeID, organizationID string, shiftID *string) error {
	q := GetQuerier(ctx, r.db)

	if shiftID == nil {
		_, err := q.Exec(ctx, `DELETE FROM employee_shift_assignments WHERE employee_id = $1 AND organization_id = $2`, employeeID, organizationID)
		if err != nil {
			return fmt.Errorf("failed to clear shift assignment: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO employee_shift_assignments (organization_id, employee_id, shift_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, employee_id)
		DO UPDATE SET shift_id = EXCLUDED.shift_id, updated_at = NOW()`

	if _, err := q.Exec(ctx, query, organizationID, employeeID, *shiftID); err != nil {
		return fmt.Errorf("failed to set shift assignment: %w", err)
	}
	return nil
}

// ClearShift implements shift.AssignmentRepository.
func (r *assignmentRepository) ClearShift(ctx context.Context, shiftID, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM employee_shift_assignments WHERE shift_id = $1 AND organization_id = $2`, shiftID, organizationID)
	if err != nil {
		return fmt.Errorf("failed to clear assignments for shift: %w", err)
	}
	return nil
}
