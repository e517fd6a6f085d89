package shift

import (
	"time"
)

type Shift struct {
	ID                   string
	OrganizationID       string
	Name                 string
	StartTime            string // HH:MM
	EndTime              string // HH:MM
	LateGracePeriod      int    // minutes after StartTime before a check-in is late
	EarlyOutGracePeriod  int    // minutes before EndTime a check-out is tolerated
	EarliestCheckIn      string // HH:MM, empty when unrestricted
	AutoSessionCloseTime string // HH:MM, empty when sessions are never auto-closed
	WorkingDays          []string
	IsDefault            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// WorksOn reports whether the shift lists the given weekday. An empty
// WorkingDays set means every day.
func (s Shift) WorksOn(day time.Weekday) bool {
	if len(s.WorkingDays) == 0 {
		return true
	}
	for _, d := range s.WorkingDays {
		if d == day.String() {
			return true
		}
	}
	return false
}

// ShiftOverride temporarily reassigns an employee to another shift for an
// inclusive range of org-local calendar days.
type ShiftOverride struct {
	ID             string
	OrganizationID string
	EmployeeID     string
	ShiftID        string
	StartDate      string // YYYY-MM-DD
	EndDate        string // YYYY-MM-DD, inclusive
	Reason         *string
	CreatedAt      time.Time
}

// Covers reports whether the override applies to employeeID on date.
// Dates are zero-padded YYYY-MM-DD so string comparison orders them correctly.
func (o ShiftOverride) Covers(employeeID, date string) bool {
	return o.EmployeeID == employeeID && o.StartDate <= date && date <= o.EndDate
}

// Catalog is everything the resolver needs for one organization.
type Catalog struct {
	Shifts    []Shift
	Overrides []ShiftOverride
}

var WeekdayNames = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}
