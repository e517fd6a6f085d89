package attendance

import (
	"strings"
	"time"
)

// Status is the punctuality or presence state of an attendance record.
type Status string

const (
	StatusPresent  Status = "PRESENT"
	StatusLate     Status = "LATE"
	StatusAbsent   Status = "ABSENT"
	StatusLeave    Status = "LEAVE"
	StatusEarlyOut Status = "EARLY_OUT"
	// StatusUnknown holds legacy or unrecognized stored values.
	StatusUnknown Status = "UNKNOWN"
)

// ParseStatus maps a stored value onto Status. Unrecognized values become
// StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPresent:
		return StatusPresent
	case StatusLate:
		return StatusLate
	case StatusAbsent:
		return StatusAbsent
	case StatusLeave:
		return StatusLeave
	case StatusEarlyOut:
		return StatusEarlyOut
	default:
		return StatusUnknown
	}
}

func (s Status) IsValid() bool {
	return s != StatusUnknown && ParseStatus(string(s)) == s
}

type DutyType string

const (
	DutyTypeOffice DutyType = "OFFICE"
	DutyTypeRemote DutyType = "REMOTE"
	DutyTypeField  DutyType = "FIELD"
)

var DutyTypes = []string{string(DutyTypeOffice), string(DutyTypeRemote), string(DutyTypeField)}

type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Attendance is a raw punch record. Several may exist for the same employee
// and date; they are merged at read time by Consolidator.
type Attendance struct {
	ID             string
	OrganizationID string
	EmployeeID     string
	EmployeeName   string
	Date           string // YYYY-MM-DD, org-local
	CheckIn        string // HH:MM or NoTime
	CheckOut       string // HH:MM or NoTime
	Status         Status
	Location       *Location
	Remarks        string
	SelfieRef      *string
	DutyType       DutyType
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NoTime marks a missing punch.
const NoTime = "-"

// IsOpen reports whether the record has a check-in but no check-out yet.
func (a Attendance) IsOpen() bool {
	return hasTime(a.CheckIn) && !hasTime(a.CheckOut)
}

func hasTime(s string) bool {
	return s != "" && s != NoTime
}
