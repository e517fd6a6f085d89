package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/validator"
)

// MaxReportDays bounds a daily report request.
const MaxReportDays = 62

type PunchType string

const (
	PunchCheckIn  PunchType = "check_in"
	PunchCheckOut PunchType = "check_out"
)

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type PunchRequest struct {
	// EmployeeID defaults to the caller's employee id.
	EmployeeID   string           `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Type         PunchType        `json:"type"`
	Location     *LocationRequest `json:"location,omitempty"`
	Remarks      string           `json:"remarks"`
	SelfieRef    *string          `json:"selfie_ref,omitempty"`
	DutyType     string           `json:"duty_type"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", ErrEmployeeIDRequired.Error())
	}
	if r.Type != PunchCheckIn && r.Type != PunchCheckOut {
		errs.Add("type", ErrInvalidPunchType.Error())
	}
	if r.Location != nil {
		validateLocation(&errs, *r.Location)
	}
	if r.DutyType != "" && !validator.IsInSlice(r.DutyType, DutyTypes) {
		errs.Add("duty_type", "duty_type must be one of OFFICE, REMOTE, FIELD")
	}

	return errs.OrNil()
}

func (r *PunchRequest) location() *Location {
	if r.Location == nil {
		return nil
	}
	return &Location{
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
		Address:   r.Location.Address,
	}
}

// NewPunch builds the raw record for a punch at clock on date.
func (r *PunchRequest) NewPunch(organizationID, date, clock string, status Status) Attendance {
	a := Attendance{
		OrganizationID: organizationID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		Date:           date,
		CheckIn:        NoTime,
		CheckOut:       NoTime,
		Status:         status,
		Location:       r.location(),
		Remarks:        r.Remarks,
		SelfieRef:      r.SelfieRef,
		DutyType:       DutyType(r.DutyType),
	}
	if a.DutyType == "" {
		a.DutyType = DutyTypeOffice
	}
	if r.Type == PunchCheckIn {
		a.CheckIn = clock
	} else {
		a.CheckOut = clock
	}
	return a
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

type AttendanceResponse struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Date         string            `json:"date"`
	CheckIn      string            `json:"check_in"`
	CheckOut     string            `json:"check_out"`
	Status       Status            `json:"status"`
	Location     *LocationResponse `json:"location,omitempty"`
	Remarks      string            `json:"remarks,omitempty"`
	SelfieRef    *string           `json:"selfie_ref,omitempty"`
	DutyType     DutyType          `json:"duty_type"`
	WorkingHours string            `json:"working_hours"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date,
		CheckIn:      a.CheckIn,
		CheckOut:     a.CheckOut,
		Status:       a.Status,
		Location:     newLocationResponse(a.Location),
		Remarks:      a.Remarks,
		SelfieRef:    a.SelfieRef,
		DutyType:     a.DutyType,
		WorkingHours: Duration(a.CheckIn, a.CheckOut),
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	if !a.UpdatedAt.IsZero() {
		resp.UpdatedAt = a.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func newLocationResponse(l *Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{Latitude: l.Latitude, Longitude: l.Longitude, Address: l.Address}
}

type DailyReportFilter struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (f *DailyReportFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(f.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK {
		if end.Before(start) {
			errs.Add("end_date", ErrInvalidDateRange.Error())
		} else if end.Sub(start) >= MaxReportDays*24*time.Hour {
			errs.Add("end_date", ErrDateRangeTooLong.Error())
		}
	}
	if f.EmployeeID != nil && validator.IsEmpty(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must not be empty")
	}

	return errs.OrNil()
}

// DailyAttendanceRow is one consolidated day. Status is carried over from
// the raw punches; Punctuality is derived from the merged check-in and the
// resolved shift.
type DailyAttendanceRow struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Date         string            `json:"date"`
	CheckIn      string            `json:"check_in"`
	CheckOut     string            `json:"check_out"`
	Status       Status            `json:"status"`
	Punctuality  *Status           `json:"punctuality,omitempty"`
	WorkingHours string            `json:"working_hours"`
	Remarks      string            `json:"remarks,omitempty"`
	DutyType     DutyType          `json:"duty_type"`
	Location     *LocationResponse `json:"location,omitempty"`
	ShiftID      *string           `json:"shift_id,omitempty"`
	ShiftName    *string           `json:"shift_name,omitempty"`
	ShiftSource  string            `json:"shift_source"`
}

type DailyReportResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Strategy  StatusStrategy       `json:"status_strategy"`
	Total     int                  `json:"total"`
	Rows      []DailyAttendanceRow `json:"rows"`
}

// CorrectAttendanceRequest edits a raw record. Times accept "-" to clear a
// punch.
type CorrectAttendanceRequest struct {
	ID       string  `json:"-"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Status   *string `json:"status,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`
	DutyType *string `json:"duty_type,omitempty"`
}

func (r *CorrectAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.CheckIn != nil && *r.CheckIn != NoTime && !validator.IsValidClock(*r.CheckIn) {
		errs.Add("check_in", "check_in must be HH:MM or -")
	}
	if r.CheckOut != nil && *r.CheckOut != NoTime && !validator.IsValidClock(*r.CheckOut) {
		errs.Add("check_out", "check_out must be HH:MM or -")
	}
	if r.Status != nil && !ParseStatus(*r.Status).IsValid() {
		errs.Add("status", "status must be one of PRESENT, LATE, ABSENT, LEAVE, EARLY_OUT")
	}
	if r.DutyType != nil && !validator.IsInSlice(*r.DutyType, DutyTypes) {
		errs.Add("duty_type", "duty_type must be one of OFFICE, REMOTE, FIELD")
	}
	if r.CheckIn == nil && r.CheckOut == nil && r.Status == nil && r.Remarks == nil && r.DutyType == nil {
		errs.Add("body", "at least one field must be provided")
	}

	return errs.OrNil()
}

// Apply copies the provided fields onto a.
func (r *CorrectAttendanceRequest) Apply(a *Attendance) {
	if r.CheckIn != nil {
		a.CheckIn = *r.CheckIn
	}
	if r.CheckOut != nil {
		a.CheckOut = *r.CheckOut
	}
	if r.Status != nil {
		a.Status = ParseStatus(*r.Status)
	}
	if r.Remarks != nil {
		a.Remarks = *r.Remarks
	}
	if r.DutyType != nil {
		a.DutyType = DutyType(*r.DutyType)
	}
}

func validateLocation(errs *validator.ValidationErrors, l LocationRequest) {
	if l.Latitude < -90 || l.Latitude > 90 {
		errs.Add("location.latitude", "latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs.Add("location.longitude", "longitude must be between -180 and 180")
	}
}
