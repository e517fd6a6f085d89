package attendance

import "context"

// RangeFilter selects raw punches of one organization between two dates,
// inclusive.
type RangeFilter struct {
	OrganizationID string
	EmployeeID     *string
	StartDate      string
	EndDate        string
}

// AttendanceRepository stores raw punch records. Every lookup is scoped by
// organization.
type AttendanceRepository interface {
	Create(ctx context.Context, a Attendance) (Attendance, error)
	GetByID(ctx context.Context, id, organizationID string) (Attendance, error)

	// GetForUpdate is GetByID holding a row lock until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id, organizationID string) (Attendance, error)
	Update(ctx context.Context, a Attendance) (Attendance, error)

	// ListByRange returns punches ordered by date, created_at and id, which is
	// the order Consolidate visits them in.
	ListByRange(ctx context.Context, filter RangeFilter) ([]Attendance, error)

	// GetOpenPunch returns the latest record of the day that has a check-in
	// and no check-out, or ErrAttendanceNotFound.
	GetOpenPunch(ctx context.Context, organizationID, employeeID, date string) (Attendance, error)

	// ListOpenSessions returns open records across organizations dated on or
	// before date.
	ListOpenSessions(ctx context.Context, date string) ([]Attendance, error)
}
