package shift

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/validator"
)

type CreateShiftRequest struct {
	Name                 string   `json:"name"`
	StartTime            string   `json:"start_time"`
	EndTime              string   `json:"end_time"`
	LateGracePeriod      *int     `json:"late_grace_period"`
	EarlyOutGracePeriod  *int     `json:"early_out_grace_period"`
	EarliestCheckIn      string   `json:"earliest_check_in"`
	AutoSessionCloseTime string   `json:"auto_session_close_time"`
	WorkingDays          []string `json:"working_days"`
	IsDefault            bool     `json:"is_default"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	validateClock(&errs, "start_time", r.StartTime, true)
	validateClock(&errs, "end_time", r.EndTime, true)
	validateClock(&errs, "earliest_check_in", r.EarliestCheckIn, false)
	validateClock(&errs, "auto_session_close_time", r.AutoSessionCloseTime, false)
	validateGrace(&errs, "late_grace_period", r.LateGracePeriod)
	validateGrace(&errs, "early_out_grace_period", r.EarlyOutGracePeriod)
	validateWorkingDays(&errs, r.WorkingDays)

	return errs.OrNil()
}

// ToShift builds the entity for organizationID. Missing grace periods are zero.
func (r *CreateShiftRequest) ToShift(organizationID string) Shift {
	return Shift{
		OrganizationID:       organizationID,
		Name:                 strings.TrimSpace(r.Name),
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		LateGracePeriod:      intOrZero(r.LateGracePeriod),
		EarlyOutGracePeriod:  intOrZero(r.EarlyOutGracePeriod),
		EarliestCheckIn:      r.EarliestCheckIn,
		AutoSessionCloseTime: r.AutoSessionCloseTime,
		WorkingDays:          normalizeDays(r.WorkingDays),
		IsDefault:            r.IsDefault,
	}
}

type UpdateShiftRequest struct {
	ID                   string    `json:"-"`
	Name                 *string   `json:"name,omitempty"`
	StartTime            *string   `json:"start_time,omitempty"`
	EndTime              *string   `json:"end_time,omitempty"`
	LateGracePeriod      *int      `json:"late_grace_period,omitempty"`
	EarlyOutGracePeriod  *int      `json:"early_out_grace_period,omitempty"`
	EarliestCheckIn      *string   `json:"earliest_check_in,omitempty"`
	AutoSessionCloseTime *string   `json:"auto_session_close_time,omitempty"`
	WorkingDays          *[]string `json:"working_days,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.StartTime != nil {
		validateClock(&errs, "start_time", *r.StartTime, true)
	}
	if r.EndTime != nil {
		validateClock(&errs, "end_time", *r.EndTime, true)
	}
	if r.EarliestCheckIn != nil {
		validateClock(&errs, "earliest_check_in", *r.EarliestCheckIn, false)
	}
	if r.AutoSessionCloseTime != nil {
		validateClock(&errs, "auto_session_close_time", *r.AutoSessionCloseTime, false)
	}
	validateGrace(&errs, "late_grace_period", r.LateGracePeriod)
	validateGrace(&errs, "early_out_grace_period", r.EarlyOutGracePeriod)
	if r.WorkingDays != nil {
		validateWorkingDays(&errs, *r.WorkingDays)
	}

	return errs.OrNil()
}

// Apply copies the provided fields onto s.
func (r *UpdateShiftRequest) Apply(s *Shift) {
	if r.Name != nil {
		s.Name = strings.TrimSpace(*r.Name)
	}
	if r.StartTime != nil {
		s.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		s.EndTime = *r.EndTime
	}
	if r.LateGracePeriod != nil {
		s.LateGracePeriod = *r.LateGracePeriod
	}
	if r.EarlyOutGracePeriod != nil {
		s.EarlyOutGracePeriod = *r.EarlyOutGracePeriod
	}
	if r.EarliestCheckIn != nil {
		s.EarliestCheckIn = *r.EarliestCheckIn
	}
	if r.AutoSessionCloseTime != nil {
		s.AutoSessionCloseTime = *r.AutoSessionCloseTime
	}
	if r.WorkingDays != nil {
		s.WorkingDays = normalizeDays(*r.WorkingDays)
	}
}

type ShiftResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	StartTime            string   `json:"start_time"`
	EndTime              string   `json:"end_time"`
	LateGracePeriod      int      `json:"late_grace_period"`
	EarlyOutGracePeriod  int      `json:"early_out_grace_period"`
	EarliestCheckIn      string   `json:"earliest_check_in,omitempty"`
	AutoSessionCloseTime string   `json:"auto_session_close_time,omitempty"`
	WorkingDays          []string `json:"working_days"`
	IsDefault            bool     `json:"is_default"`
	CreatedAt            string   `json:"created_at,omitempty"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		StartTime:            s.StartTime,
		EndTime:              s.EndTime,
		LateGracePeriod:      s.LateGracePeriod,
		EarlyOutGracePeriod:  s.EarlyOutGracePeriod,
		EarliestCheckIn:      s.EarliestCheckIn,
		AutoSessionCloseTime: s.AutoSessionCloseTime,
		WorkingDays:          s.WorkingDays,
		IsDefault:            s.IsDefault,
	}
	if resp.WorkingDays == nil {
		resp.WorkingDays = []string{}
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.Format("2006-01-02 15:04:05")
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	return resp
}

type CreateOverrideRequest struct {
	EmployeeID string  `json:"employee_id"`
	ShiftID    string  `json:"shift_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *CreateOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.ShiftID) {
		errs.Add("shift_id", "shift_id is required")
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", ErrInvalidDateFormat.Error())
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", ErrInvalidDateFormat.Error())
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", ErrInvalidOverrideRange.Error())
	}

	return errs.OrNil()
}

type OverrideFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
}

type OverrideResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ShiftID    string  `json:"shift_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     *string `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

func NewOverrideResponse(o ShiftOverride) OverrideResponse {
	resp := OverrideResponse{
		ID:         o.ID,
		EmployeeID: o.EmployeeID,
		ShiftID:    o.ShiftID,
		StartDate:  o.StartDate,
		EndDate:    o.EndDate,
		Reason:     o.Reason,
	}
	if !o.CreatedAt.IsZero() {
		resp.CreatedAt = o.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return resp
}

// AssignShiftRequest sets (or with a nil ShiftID, clears) an employee's
// permanent shift.
type AssignShiftRequest struct {
	EmployeeID string  `json:"-"`
	ShiftID    *string `json:"shift_id"`
}

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", ErrEmployeeIDRequired.Error())
	}
	if r.ShiftID != nil && validator.IsEmpty(*r.ShiftID) {
		errs.Add("shift_id", "shift_id must not be empty")
	}
	return errs.OrNil()
}

type ResolveShiftRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

func (r *ResolveShiftRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", ErrEmployeeIDRequired.Error())
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", ErrInvalidDateFormat.Error())
	}
	return errs.OrNil()
}

type ResolvedShiftResponse struct {
	EmployeeID string         `json:"employee_id"`
	Date       string         `json:"date"`
	Source     Source         `json:"source"`
	Shift      *ShiftResponse `json:"shift"`
}

func validateClock(errs *validator.ValidationErrors, field, value string, required bool) {
	if value == "" {
		if required {
			errs.Add(field, field+" is required")
		}
		return
	}
	if !validator.IsValidClock(value) {
		errs.Add(field, field+" must be in HH:MM format")
	}
}

func validateGrace(errs *validator.ValidationErrors, field string, value *int) {
	if value != nil && *value < 0 {
		errs.Add(field, field+" must be a non-negative number")
	}
}

func validateWorkingDays(errs *validator.ValidationErrors, days []string) {
	for _, d := range days {
		if !validator.IsInSlice(canonicalDay(d), WeekdayNames) {
			errs.Add("working_days", "working_days must only contain: "+strings.Join(WeekdayNames, ", "))
			return
		}
	}
}

func canonicalDay(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return d
	}
	return strings.ToUpper(d[:1]) + d[1:]
}

// normalizeDays canonicalizes weekday names and drops duplicates, keeping
// Monday-first order.
func normalizeDays(days []string) []string {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		seen[canonicalDay(d)] = true
	}
	out := make([]string, 0, len(seen))
	for _, name := range WeekdayNames {
		if seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Weekday parses a YYYY-MM-DD date and returns its weekday.
func Weekday(date string) (time.Weekday, bool) {
	t, ok := validator.IsValidDate(date)
	if !ok {
		return 0, false
	}
	return t.Weekday(), true
}
