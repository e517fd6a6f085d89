package shift

import "errors"

var (
	// Shift errors
	ErrShiftNotFound   = errors.New("shift not found")
	ErrShiftNameExists = errors.New("shift with this name already exists")

	// Override errors
	ErrOverrideNotFound     = errors.New("shift override not found")
	ErrInvalidOverrideRange = errors.New("override end date must not be before start date")

	// Validation errors
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)
