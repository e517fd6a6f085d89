package shift

import "context"

// ShiftRepository persists an organization's shift catalog. List returns
// shifts ordered by created_at, id so default selection is stable.
type ShiftRepository interface {
	List(ctx context.Context, organizationID string) ([]Shift, error)
	GetByID(ctx context.Context, id, organizationID string) (Shift, error)
	Create(ctx context.Context, shift Shift) (Shift, error)
	Update(ctx context.Context, shift Shift) (Shift, error)
	Delete(ctx context.Context, id, organizationID string) error

	// ClearDefaults and MarkDefault are the two phases of designating a
	// default. They are separate statements; callers run them in one
	// transaction where the store supports it.
	ClearDefaults(ctx context.Context, organizationID string) error
	MarkDefault(ctx context.Context, id, organizationID string) error
}

// OverrideRepository persists temporary shift overrides. Listing is ordered
// by start_date, created_at, id, which is the order the resolver scans.
type OverrideRepository interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]ShiftOverride, error)
	ListByEmployee(ctx context.Context, employeeID, organizationID string) ([]ShiftOverride, error)
	Create(ctx context.Context, override ShiftOverride) (ShiftOverride, error)
	Delete(ctx context.Context, id, organizationID string) error
}

// AssignmentRepository stores each employee's permanent shift assignment.
type AssignmentRepository interface {
	GetAssignedShiftID(ctx context.Context, employeeID, organizationID string) (*string, error)
	ListAssignments(ctx context.Context, organizationID string) (map[string]string, error)
	SetAssignedShiftID(ctx context.Context, employeeID, organizationID string, shiftID *string) error
	ClearShift(ctx context.Context, shiftID, organizationID string) error
}
