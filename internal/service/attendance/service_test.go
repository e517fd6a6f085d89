package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orgID = "org-1"

type fakeAttendanceRepo struct {
	records []attendance.Attendance
	// failUpdate makes Update fail for the given record id.
	failUpdate string
	locked     []string
	// afterListOpen runs once the open sessions have been listed.
	afterListOpen func()
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.records = append(r.records, a)
	return a, nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id, organizationID string) (attendance.Attendance, error) {
	for _, a := range r.records {
		if a.ID == id && a.OrganizationID == organizationID {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) GetForUpdate(ctx context.Context, id, organizationID string) (attendance.Attendance, error) {
	r.locked = append(r.locked, id)
	return r.GetByID(ctx, id, organizationID)
}

func (r *fakeAttendanceRepo) Update(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if a.ID == r.failUpdate {
		return attendance.Attendance{}, errors.New("connection reset")
	}
	for i := range r.records {
		if r.records[i].ID == a.ID {
			r.records[i] = a
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) ListByRange(_ context.Context, f attendance.RangeFilter) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.OrganizationID != f.OrganizationID || a.Date < f.StartDate || a.Date > f.EndDate {
			continue
		}
		if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAttendanceRepo) GetOpenPunch(_ context.Context, organizationID, employeeID, date string) (attendance.Attendance, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		a := r.records[i]
		if a.OrganizationID == organizationID && a.EmployeeID == employeeID && a.Date == date && a.IsOpen() {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) ListOpenSessions(_ context.Context, date string) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.Date <= date && a.IsOpen() {
			out = append(out, a)
		}
	}
	if r.afterListOpen != nil {
		r.afterListOpen()
	}
	return out, nil
}

func (r *fakeAttendanceRepo) byID(id string) attendance.Attendance {
	for _, a := range r.records {
		if a.ID == id {
			return a
		}
	}
	return attendance.Attendance{}
}

type staticCatalogs map[string]shift.Catalog

func (c staticCatalogs) LoadCatalog(_ context.Context, organizationID string) (shift.Catalog, error) {
	return c[organizationID], nil
}

type fakeAssignmentRepo struct {
	assigned map[string]string
}

func (r *fakeAssignmentRepo) GetAssignedShiftID(_ context.Context, employeeID, _ string) (*string, error) {
	if id, ok := r.assigned[employeeID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ListAssignments(_ context.Context, _ string) (map[string]string, error) {
	return r.assigned, nil
}

func (r *fakeAssignmentRepo) SetAssignedShiftID(_ context.Context, employeeID, _ string, shiftID *string) error {
	if shiftID == nil {
		delete(r.assigned, employeeID)
		return nil
	}
	r.assigned[employeeID] = *shiftID
	return nil
}

func (r *fakeAssignmentRepo) ClearShift(context.Context, string, string) error { return nil }

type fakeGuard struct {
	denied map[string]error
}

func (g fakeGuard) EnsureWritable(_ context.Context, organizationID string) error {
	return g.denied[organizationID]
}

type inlineTransactor struct{}

func (inlineTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *AttendanceServiceImpl
	repo     *fakeAttendanceRepo
	catalogs staticCatalogs
	assign   *fakeAssignmentRepo
	guard    fakeGuard
	now      *time.Time
}

// regular starts at 09:00 with a 15 minute grace, opens check-in at 07:00
// and auto-closes at 20:00.
func regular() shift.Shift {
	return shift.Shift{
		ID:                   "regular",
		OrganizationID:       orgID,
		Name:                 "Regular",
		StartTime:            "09:00",
		EndTime:              "17:00",
		LateGracePeriod:      15,
		EarlyOutGracePeriod:  30,
		EarliestCheckIn:      "07:00",
		AutoSessionCloseTime: "20:00",
		IsDefault:            true,
	}
}

func newFixture(t *testing.T, at time.Time, opts Options) fixture {
	t.Helper()
	now := at
	f := fixture{
		repo:     &fakeAttendanceRepo{},
		catalogs: staticCatalogs{orgID: {Shifts: []shift.Shift{regular()}}},
		assign:   &fakeAssignmentRepo{assigned: map[string]string{}},
		guard:    fakeGuard{denied: map[string]error{}},
		now:      &now,
	}
	opts.Clock = func() time.Time { return *f.now }
	f.svc = NewAttendanceService(f.repo, f.assign, f.catalogs, f.guard, inlineTransactor{}, opts)
	return f
}

func at(clock string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2026-04-15 "+clock)
	return t
}

func adminCtx() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{
		UserID: "admin-1", OrganizationID: orgID, Role: user.RoleAdmin, TokenType: "access",
	})
}

func employeeCtx(employeeID string) context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{
		UserID: "user-" + employeeID, OrganizationID: orgID, EmployeeID: employeeID, Role: user.RoleEmployee, TokenType: "access",
	})
}

func checkIn() attendance.PunchRequest {
	return attendance.PunchRequest{EmployeeName: "Budi", Type: attendance.PunchCheckIn}
}

func checkOut() attendance.PunchRequest {
	return attendance.PunchRequest{EmployeeName: "Budi", Type: attendance.PunchCheckOut}
}

func TestRecordPunch_CheckInClassification(t *testing.T) {
	tests := []struct {
		clock string
		want  attendance.Status
	}{
		{"08:45", attendance.StatusPresent},
		{"09:15", attendance.StatusPresent},
		{"09:16", attendance.StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			f := newFixture(t, at(tt.clock), Options{})

			resp, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, tt.clock, resp.CheckIn)
			assert.Equal(t, attendance.NoTime, resp.CheckOut)
			assert.Equal(t, "2026-04-15", resp.Date)
			assert.Equal(t, "emp-1", resp.EmployeeID)
			assert.Equal(t, attendance.DutyTypeOffice, resp.DutyType)
			assert.NotEmpty(t, resp.ID)
		})
	}
}

func TestRecordPunch_NoShiftIsPresent(t *testing.T) {
	f := newFixture(t, at("13:00"), Options{})
	f.catalogs[orgID] = shift.Catalog{}

	resp, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
}

func TestRecordPunch_TooEarly(t *testing.T) {
	f := newFixture(t, at("06:59"), Options{})

	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	assert.ErrorIs(t, err, attendance.ErrTooEarlyToCheckIn)
	assert.Empty(t, f.repo.records)
}

func TestRecordPunch_AlreadyCheckedIn(t *testing.T) {
	f := newFixture(t, at("08:50"), Options{})

	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)

	_, err = f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestRecordPunch_CheckOutClosesOpenPunch(t *testing.T) {
	f := newFixture(t, at("08:30"), Options{})

	in, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)

	*f.now = at("17:00")
	out, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkOut())
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "08:30", out.CheckIn)
	assert.Equal(t, "17:00", out.CheckOut)
	assert.Equal(t, "8.5", out.WorkingHours)
	assert.Equal(t, attendance.StatusPresent, out.Status)
	assert.Len(t, f.repo.records, 1)
}

func TestRecordPunch_EarlyCheckOut(t *testing.T) {
	f := newFixture(t, at("08:30"), Options{})

	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)

	*f.now = at("16:29")
	out, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkOut())
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusEarlyOut, out.Status)
}

func TestRecordPunch_LateStaysLateOnEarlyCheckOut(t *testing.T) {
	f := newFixture(t, at("10:00"), Options{})

	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)

	*f.now = at("12:00")
	out, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkOut())
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, out.Status)
}

func TestRecordPunch_CheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t, at("17:05"), Options{})

	resp, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkOut())
	require.NoError(t, err)
	assert.Equal(t, attendance.NoTime, resp.CheckIn)
	assert.Equal(t, "17:05", resp.CheckOut)
	assert.Equal(t, "0.0", resp.WorkingHours)
}

func TestRecordPunch_SecondSessionAfterCheckOut(t *testing.T) {
	f := newFixture(t, at("08:00"), Options{})
	ctx := employeeCtx("emp-1")

	_, err := f.svc.RecordPunch(ctx, checkIn())
	require.NoError(t, err)
	*f.now = at("12:00")
	_, err = f.svc.RecordPunch(ctx, checkOut())
	require.NoError(t, err)

	*f.now = at("13:00")
	second, err := f.svc.RecordPunch(ctx, checkIn())
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, second.Status)
	assert.Len(t, f.repo.records, 2)
}

func TestRecordPunch_OrganizationLocalDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 23:30 UTC on the 14th is 06:30 on the 15th in Jakarta.
	f := newFixture(t, time.Date(2026, 4, 14, 23, 30, 0, 0, time.UTC), Options{Location: jakarta})
	f.catalogs[orgID] = shift.Catalog{}

	resp, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)
	assert.Equal(t, "2026-04-15", resp.Date)
	assert.Equal(t, "06:30", resp.CheckIn)
}

func TestRecordPunch_Access(t *testing.T) {
	f := newFixture(t, at("08:30"), Options{})

	req := checkIn()
	req.EmployeeID = "emp-2"
	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), req)
	assert.ErrorIs(t, err, user.ErrAdminAccessRequired)

	resp, err := f.svc.RecordPunch(adminCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, "emp-2", resp.EmployeeID)

	_, err = f.svc.RecordPunch(adminCtx(), checkIn())
	var verr validator.ValidationErrors
	assert.ErrorAs(t, err, &verr)
}

func TestRecordPunch_Gated(t *testing.T) {
	f := newFixture(t, at("08:30"), Options{})
	f.guard.denied[orgID] = subscription.ErrSubscriptionExpired

	_, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	assert.ErrorIs(t, err, subscription.ErrSubscriptionExpired)
	assert.Empty(t, f.repo.records)
}

func TestRecordPunch_OverrideShift(t *testing.T) {
	f := newFixture(t, at("07:10"), Options{})
	early := shift.Shift{ID: "early", OrganizationID: orgID, Name: "Early", StartTime: "07:00", EndTime: "15:00"}
	f.catalogs[orgID] = shift.Catalog{
		Shifts: []shift.Shift{regular(), early},
		Overrides: []shift.ShiftOverride{
			{ID: "o1", OrganizationID: orgID, EmployeeID: "emp-1", ShiftID: "early", StartDate: "2026-04-15", EndDate: "2026-04-15"},
		},
	}

	resp, err := f.svc.RecordPunch(employeeCtx("emp-1"), checkIn())
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
}

func seed(f fixture, records ...attendance.Attendance) {
	for _, r := range records {
		if r.OrganizationID == "" {
			r.OrganizationID = orgID
		}
		if r.Status == "" {
			r.Status = attendance.StatusPresent
		}
		f.repo.records = append(f.repo.records, r)
	}
}

func TestDailyReport_ConsolidatesAndSorts(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f,
		attendance.Attendance{ID: "a1", EmployeeID: "emp-2", EmployeeName: "Siti", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"},
		attendance.Attendance{ID: "a2", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-14", CheckIn: "09:30", CheckOut: "-", Status: attendance.StatusLate},
		attendance.Attendance{ID: "a3", EmployeeID: "emp-2", EmployeeName: "Siti", Date: "2026-04-14", CheckIn: "13:00", CheckOut: "17:30"},
		attendance.Attendance{ID: "a4", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-13", CheckIn: "08:00", CheckOut: "16:00"},
	)

	resp, err := f.svc.DailyReport(adminCtx(), attendance.DailyReportFilter{StartDate: "2026-04-13", EndDate: "2026-04-15"})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusFirstSeen, resp.Strategy)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Rows, 3)

	assert.Equal(t, "a4", resp.Rows[0].ID)
	assert.Equal(t, "Budi", resp.Rows[1].EmployeeName)
	assert.Equal(t, "Siti", resp.Rows[2].EmployeeName)

	siti := resp.Rows[2]
	assert.Equal(t, "08:55", siti.CheckIn)
	assert.Equal(t, "17:30", siti.CheckOut)
	assert.Equal(t, "8.6", siti.WorkingHours)
	assert.Equal(t, string(shift.SourceDefault), siti.ShiftSource)
	require.NotNil(t, siti.ShiftName)
	assert.Equal(t, "Regular", *siti.ShiftName)
	require.NotNil(t, siti.Punctuality)
	assert.Equal(t, attendance.StatusPresent, *siti.Punctuality)

	budi := resp.Rows[1]
	assert.Equal(t, attendance.StatusLate, budi.Status)
	assert.Equal(t, "0.0", budi.WorkingHours)
	require.NotNil(t, budi.Punctuality)
	assert.Equal(t, attendance.StatusLate, *budi.Punctuality)
}

func TestDailyReport_WorstCaseStrategy(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{StatusStrategy: attendance.StatusWorstCase})
	seed(f,
		attendance.Attendance{ID: "a1", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"},
		attendance.Attendance{ID: "a2", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-14", CheckIn: "13:20", CheckOut: "17:00", Status: attendance.StatusLate},
	)

	resp, err := f.svc.DailyReport(adminCtx(), attendance.DailyReportFilter{StartDate: "2026-04-14", EndDate: "2026-04-14"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, attendance.StatusWorstCase, resp.Strategy)
	assert.Equal(t, attendance.StatusLate, resp.Rows[0].Status)
}

func TestDailyReport_NoShift(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	f.catalogs[orgID] = shift.Catalog{}
	seed(f, attendance.Attendance{ID: "a1", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"})

	resp, err := f.svc.DailyReport(adminCtx(), attendance.DailyReportFilter{StartDate: "2026-04-14", EndDate: "2026-04-14"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, string(shift.SourceNone), resp.Rows[0].ShiftSource)
	assert.Nil(t, resp.Rows[0].ShiftID)
	assert.Nil(t, resp.Rows[0].Punctuality)
}

func TestDailyReport_EmployeeSeesOwnRows(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f,
		attendance.Attendance{ID: "a1", EmployeeID: "emp-1", EmployeeName: "Budi", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"},
		attendance.Attendance{ID: "a2", EmployeeID: "emp-2", EmployeeName: "Siti", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"},
	)

	other := "emp-2"
	resp, err := f.svc.DailyReport(employeeCtx("emp-1"), attendance.DailyReportFilter{StartDate: "2026-04-14", EndDate: "2026-04-14", EmployeeID: &other})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "emp-1", resp.Rows[0].EmployeeID)
}

func TestDailyReport_InvalidRange(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})

	_, err := f.svc.DailyReport(adminCtx(), attendance.DailyReportFilter{StartDate: "2026-04-15", EndDate: "2026-04-01"})
	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.ToMap(), "end_date")

	_, err = f.svc.DailyReport(adminCtx(), attendance.DailyReportFilter{StartDate: "2026-01-01", EndDate: "2026-04-01"})
	assert.ErrorAs(t, err, &verr)
}

func TestGetAttendance_Access(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f, attendance.Attendance{ID: "a1", EmployeeID: "emp-2", Date: "2026-04-14", CheckIn: "08:55", CheckOut: "12:00"})

	_, err := f.svc.GetAttendance(employeeCtx("emp-1"), "a1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	resp, err := f.svc.GetAttendance(employeeCtx("emp-2"), "a1")
	require.NoError(t, err)
	assert.Equal(t, "3.1", resp.WorkingHours)

	_, err = f.svc.GetAttendance(adminCtx(), "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestCorrectAttendance(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f, attendance.Attendance{ID: "a1", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:30", CheckOut: "-", Status: attendance.StatusLate})

	checkOut := "17:00"
	status := "present"
	req := attendance.CorrectAttendanceRequest{ID: "a1", CheckOut: &checkOut, Status: &status}

	_, err := f.svc.CorrectAttendance(employeeCtx("emp-1"), req)
	assert.ErrorIs(t, err, user.ErrAdminAccessRequired)

	resp, err := f.svc.CorrectAttendance(adminCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, "17:00", resp.CheckOut)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, "7.5", resp.WorkingHours)

	f.guard.denied[orgID] = subscription.ErrOrganizationSuspended
	_, err = f.svc.CorrectAttendance(adminCtx(), req)
	assert.ErrorIs(t, err, subscription.ErrOrganizationSuspended)
}

func TestCloseStaleSessions(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f,
		// Yesterday, closes regardless of the current clock.
		attendance.Attendance{ID: "old", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
		// Today, before the 20:00 close time.
		attendance.Attendance{ID: "today", EmployeeID: "emp-2", Date: "2026-04-15", CheckIn: "09:00", CheckOut: "-"},
		// Checked in after the close time.
		attendance.Attendance{ID: "night", EmployeeID: "emp-3", Date: "2026-04-14", CheckIn: "21:00", CheckOut: "-"},
		// Already closed.
		attendance.Attendance{ID: "done", EmployeeID: "emp-4", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "17:00"},
	)

	closed, err := f.svc.CloseStaleSessions(context.Background(), at("18:00"))
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	old := f.repo.byID("old")
	assert.Equal(t, "20:00", old.CheckOut)
	assert.Equal(t, autoClosedRemark, old.Remarks)
	assert.True(t, f.repo.byID("today").IsOpen())
	assert.True(t, f.repo.byID("night").IsOpen())

	closed, err = f.svc.CloseStaleSessions(context.Background(), at("20:00"))
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, "20:00", f.repo.byID("today").CheckOut)
}

func TestCloseStaleSessions_SkipsGatedAndUnclosable(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	noClose := regular()
	noClose.AutoSessionCloseTime = ""
	f.catalogs["org-2"] = shift.Catalog{Shifts: []shift.Shift{noClose}}
	f.catalogs["org-3"] = shift.Catalog{Shifts: []shift.Shift{regular()}}
	f.guard.denied["org-3"] = subscription.ErrSubscriptionExpired
	seed(f,
		attendance.Attendance{ID: "a", OrganizationID: "org-2", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
		attendance.Attendance{ID: "b", OrganizationID: "org-3", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
	)

	closed, err := f.svc.CloseStaleSessions(context.Background(), at("21:00"))
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestCloseStaleSessions_KeepsCheckOutRecordedAfterListing(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f,
		attendance.Attendance{ID: "a", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
	)
	f.repo.afterListOpen = func() {
		for i := range f.repo.records {
			if f.repo.records[i].ID == "a" {
				f.repo.records[i].CheckOut = "19:30"
				f.repo.records[i].Remarks = "left after meeting"
			}
		}
	}

	closed, err := f.svc.CloseStaleSessions(context.Background(), at("21:00"))
	require.NoError(t, err)
	assert.Zero(t, closed)
	assert.Equal(t, []string{"a"}, f.repo.locked)

	a := f.repo.byID("a")
	assert.Equal(t, "19:30", a.CheckOut)
	assert.Equal(t, "left after meeting", a.Remarks)
}

func TestCloseStaleSessions_ReportsUpdateFailures(t *testing.T) {
	f := newFixture(t, at("18:00"), Options{})
	seed(f,
		attendance.Attendance{ID: "a", EmployeeID: "emp-1", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
		attendance.Attendance{ID: "b", EmployeeID: "emp-2", Date: "2026-04-14", CheckIn: "09:00", CheckOut: "-"},
	)
	f.repo.failUpdate = "a"

	closed, err := f.svc.CloseStaleSessions(context.Background(), at("21:00"))
	assert.Error(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, "20:00", f.repo.byID("b").CheckOut)
}
