package attendance

import "errors"

var (
	// Punch errors
	ErrTooEarlyToCheckIn  = errors.New("too early to check in")
	ErrAlreadyCheckedIn   = errors.New("you already have an open check-in today")
	ErrInvalidPunchType   = errors.New("punch type must be check_in or check_out")
	ErrEmployeeIDRequired = errors.New("employee id is required")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateRange   = errors.New("end_date must not be before start_date")
	ErrDateRangeTooLong   = errors.New("date range must not exceed 62 days")
)
