package attendance

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const autoClosedRemark = "auto-closed at shift close time"

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	assignmentRepo shift.AssignmentRepository
	catalogs       shift.CatalogProvider
	guard          subscription.WriteGuard
	tx             database.Transactor
	consolidator   *attendance.Consolidator
	strategy       attendance.StatusStrategy
	loc            *time.Location
	now            func() time.Time
}

// Options tune how punches are dated and merged.
type Options struct {
	StatusStrategy attendance.StatusStrategy
	// Location is the organization-local zone punches are dated in.
	Location *time.Location
	Clock    func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	assignmentRepo shift.AssignmentRepository,
	catalogs shift.CatalogProvider,
	guard subscription.WriteGuard,
	tx database.Transactor,
	opts Options,
) *AttendanceServiceImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	consolidator := attendance.NewConsolidator(opts.StatusStrategy)
	strategy := opts.StatusStrategy
	if strategy != attendance.StatusWorstCase {
		strategy = attendance.StatusFirstSeen
	}
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		assignmentRepo: assignmentRepo,
		catalogs:       catalogs,
		guard:          guard,
		tx:             tx,
		consolidator:   consolidator,
		strategy:       strategy,
		loc:            opts.Location,
		now:            opts.Clock,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// RecordPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.PunchRequest) (attendance.AttendanceResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.EmployeeID == "" {
		req.EmployeeID = claims.EmployeeID
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !claims.Role.CanManageOrganization() && req.EmployeeID != claims.EmployeeID {
		return attendance.AttendanceResponse{}, user.ErrAdminAccessRequired
	}
	if err := a.guard.EnsureWritable(ctx, claims.OrganizationID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowLocal := a.now().In(a.loc)
	date := nowLocal.Format("2006-01-02")
	clock := nowLocal.Format("15:04")

	sh, hasShift, err := a.resolveShift(ctx, claims.OrganizationID, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var saved attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.attendanceRepo.GetOpenPunch(ctx, claims.OrganizationID, req.EmployeeID, date)
		hasOpen := err == nil
		if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("get open punch: %w", err)
		}

		if req.Type == attendance.PunchCheckIn {
			if hasOpen {
				return attendance.ErrAlreadyCheckedIn
			}
			saved, err = a.checkIn(ctx, req, claims.OrganizationID, date, clock, sh, hasShift)
			return err
		}

		if hasOpen {
			saved, err = a.closePunch(ctx, open, clock, req.Remarks, sh, hasShift)
			return err
		}
		saved, err = a.checkOutWithoutCheckIn(ctx, req, claims.OrganizationID, date, clock, sh, hasShift)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("punch recorded",
		"organization_id", claims.OrganizationID,
		"employee_id", req.EmployeeID,
		"type", req.Type,
		"date", date,
		"status", saved.Status,
	)
	return attendance.NewAttendanceResponse(saved), nil
}

func (a *AttendanceServiceImpl) checkIn(ctx context.Context, req attendance.PunchRequest, organizationID, date, clock string, sh shift.Shift, hasShift bool) (attendance.Attendance, error) {
	status := attendance.StatusPresent
	if hasShift {
		if sh.EarliestCheckIn != "" && clock < sh.EarliestCheckIn {
			return attendance.Attendance{}, attendance.ErrTooEarlyToCheckIn
		}
		status = attendance.Classify(clock, sh.StartTime, sh.LateGracePeriod)
	}

	record := req.NewPunch(organizationID, date, clock, status)
	return a.create(ctx, record)
}

func (a *AttendanceServiceImpl) closePunch(ctx context.Context, open attendance.Attendance, clock, remarks string, sh shift.Shift, hasShift bool) (attendance.Attendance, error) {
	open.CheckOut = clock
	open.Remarks = appendRemark(open.Remarks, remarks)
	if hasShift && open.Status == attendance.StatusPresent && isEarlyOut(clock, sh) {
		open.Status = attendance.StatusEarlyOut
	}

	updated, err := a.attendanceRepo.Update(ctx, open)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("update attendance: %w", err)
	}
	return updated, nil
}

func (a *AttendanceServiceImpl) checkOutWithoutCheckIn(ctx context.Context, req attendance.PunchRequest, organizationID, date, clock string, sh shift.Shift, hasShift bool) (attendance.Attendance, error) {
	status := attendance.StatusPresent
	if hasShift && isEarlyOut(clock, sh) {
		status = attendance.StatusEarlyOut
	}
	return a.create(ctx, req.NewPunch(organizationID, date, clock, status))
}

func (a *AttendanceServiceImpl) create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("generate attendance id: %w", err)
	}
	record.ID = id.String()

	created, err := a.attendanceRepo.Create(ctx, record)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("create attendance: %w", err)
	}
	return created, nil
}

// isEarlyOut reports whether clock is before the shift end minus its
// early-out grace.
func isEarlyOut(clock string, sh shift.Shift) bool {
	out, ok := attendance.ClockMinutes(clock)
	if !ok {
		return false
	}
	end, ok := attendance.ClockMinutes(sh.EndTime)
	if !ok {
		return false
	}
	return out < end-sh.EarlyOutGracePeriod
}

func (a *AttendanceServiceImpl) resolveShift(ctx context.Context, organizationID, employeeID, date string) (shift.Shift, bool, error) {
	catalog, err := a.catalogs.LoadCatalog(ctx, organizationID)
	if err != nil {
		return shift.Shift{}, false, fmt.Errorf("load shift catalog: %w", err)
	}
	assigned, err := a.assignmentRepo.GetAssignedShiftID(ctx, employeeID, organizationID)
	if err != nil {
		return shift.Shift{}, false, fmt.Errorf("get assigned shift: %w", err)
	}
	sh, ok := shift.NewResolver(catalog).Resolve(employeeID, assigned, date)
	return sh, ok, nil
}

// DailyReport implements attendance.AttendanceService. Employees only see
// their own rows.
func (a *AttendanceServiceImpl) DailyReport(ctx context.Context, filter attendance.DailyReportFilter) (attendance.DailyReportResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}
	if !claims.Role.CanManageOrganization() {
		own := claims.EmployeeID
		filter.EmployeeID = &own
	}
	if err := filter.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	var (
		raw         []attendance.Attendance
		catalog     shift.Catalog
		assignments map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = a.attendanceRepo.ListByRange(gctx, attendance.RangeFilter{
			OrganizationID: claims.OrganizationID,
			EmployeeID:     filter.EmployeeID,
			StartDate:      filter.StartDate,
			EndDate:        filter.EndDate,
		})
		if err != nil {
			return fmt.Errorf("list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		catalog, err = a.catalogs.LoadCatalog(gctx, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("load shift catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = a.assignmentRepo.ListAssignments(gctx, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	resolver := shift.NewResolver(catalog)
	days := a.consolidator.Consolidate(raw)
	rows := make([]attendance.DailyAttendanceRow, 0, len(days))
	for _, d := range days {
		var assigned *string
		if id, ok := assignments[d.EmployeeID]; ok {
			assigned = &id
		}
		sh, source := resolver.ResolveWithSource(d.EmployeeID, assigned, d.Date)
		rows = append(rows, newDailyRow(d, sh, source))
	}

	slices.SortStableFunc(rows, func(x, y attendance.DailyAttendanceRow) int {
		return cmp.Or(
			cmp.Compare(x.Date, y.Date),
			cmp.Compare(x.EmployeeName, y.EmployeeName),
			cmp.Compare(x.EmployeeID, y.EmployeeID),
		)
	})

	return attendance.DailyReportResponse{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Strategy:  a.strategy,
		Total:     len(rows),
		Rows:      rows,
	}, nil
}

func newDailyRow(d attendance.Attendance, sh shift.Shift, source shift.Source) attendance.DailyAttendanceRow {
	resp := attendance.NewAttendanceResponse(d)
	row := attendance.DailyAttendanceRow{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		EmployeeName: d.EmployeeName,
		Date:         d.Date,
		CheckIn:      d.CheckIn,
		CheckOut:     d.CheckOut,
		Status:       d.Status,
		WorkingHours: resp.WorkingHours,
		Remarks:      d.Remarks,
		DutyType:     d.DutyType,
		Location:     resp.Location,
		ShiftSource:  string(source),
	}
	if source == shift.SourceNone {
		return row
	}

	id, name := sh.ID, sh.Name
	row.ShiftID = &id
	row.ShiftName = &name
	if d.CheckIn != "" && d.CheckIn != attendance.NoTime {
		p := attendance.Classify(d.CheckIn, sh.StartTime, sh.LateGracePeriod)
		row.Punctuality = &p
	}
	return row
}

// GetAttendance implements attendance.AttendanceService. Employees can only
// read their own records.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.attendanceRepo.GetByID(ctx, id, claims.OrganizationID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get attendance: %w", err)
	}
	if !claims.Role.CanManageOrganization() && record.EmployeeID != claims.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	return attendance.NewAttendanceResponse(record), nil
}

// CorrectAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CorrectAttendance(ctx context.Context, req attendance.CorrectAttendanceRequest) (attendance.AttendanceResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !claims.Role.CanManageOrganization() {
		return attendance.AttendanceResponse{}, user.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := a.guard.EnsureWritable(ctx, claims.OrganizationID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var updated attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.attendanceRepo.GetByID(ctx, req.ID, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("get attendance: %w", err)
		}
		req.Apply(&record)

		updated, err = a.attendanceRepo.Update(ctx, record)
		if err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance corrected", "organization_id", claims.OrganizationID, "attendance_id", req.ID, "by", claims.UserID)
	return attendance.NewAttendanceResponse(updated), nil
}

// CloseStaleSessions implements attendance.AttendanceService. Sessions are
// closed at the auto-close time of the shift that governs their date;
// organizations that may not write are skipped.
func (a *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context, now time.Time) (int, error) {
	nowLocal := now.In(a.loc)
	today := nowLocal.Format("2006-01-02")
	clock := nowLocal.Format("15:04")

	sessions, err := a.attendanceRepo.ListOpenSessions(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list open sessions: %w", err)
	}

	byOrg := make(map[string][]attendance.Attendance)
	var orgs []string
	for _, s := range sessions {
		if _, ok := byOrg[s.OrganizationID]; !ok {
			orgs = append(orgs, s.OrganizationID)
		}
		byOrg[s.OrganizationID] = append(byOrg[s.OrganizationID], s)
	}

	var errs []error
	closed := 0
	for _, orgID := range orgs {
		if err := a.guard.EnsureWritable(ctx, orgID); err != nil {
			slog.Debug("skipping auto-close", "organization_id", orgID, "reason", err)
			continue
		}

		catalog, err := a.catalogs.LoadCatalog(ctx, orgID)
		if err != nil {
			errs = append(errs, fmt.Errorf("load catalog for %s: %w", orgID, err))
			continue
		}
		assignments, err := a.assignmentRepo.ListAssignments(ctx, orgID)
		if err != nil {
			errs = append(errs, fmt.Errorf("list assignments for %s: %w", orgID, err))
			continue
		}
		resolver := shift.NewResolver(catalog)

		for _, session := range byOrg[orgID] {
			var assigned *string
			if id, ok := assignments[session.EmployeeID]; ok {
				assigned = &id
			}
			sh, ok := resolver.Resolve(session.EmployeeID, assigned, session.Date)
			if !ok || sh.AutoSessionCloseTime == "" {
				continue
			}
			if session.Date == today && clock < sh.AutoSessionCloseTime {
				continue
			}
			if sh.AutoSessionCloseTime < session.CheckIn {
				continue
			}

			done, err := a.closeSession(ctx, session.ID, orgID, sh.AutoSessionCloseTime)
			if err != nil {
				slog.Error("failed to auto-close attendance", "attendance_id", session.ID, "employee_id", session.EmployeeID, "error", err)
				errs = append(errs, err)
				continue
			}
			if done {
				closed++
			}
		}
	}

	if closed > 0 {
		slog.Info("auto-closed stale attendances", "count", closed)
	}
	return closed, errors.Join(errs...)
}

// closeSession re-reads the record under a lock and stamps closeAt as its
// check-out. A record checked out or edited into a later check-in since the
// listing is left alone and reported as not closed.
func (a *AttendanceServiceImpl) closeSession(ctx context.Context, id, organizationID, closeAt string) (bool, error) {
	closed := false
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := a.attendanceRepo.GetForUpdate(ctx, id, organizationID)
		if err != nil {
			return err
		}
		if !current.IsOpen() || closeAt < current.CheckIn {
			return nil
		}

		current.CheckOut = closeAt
		current.Remarks = appendRemark(current.Remarks, autoClosedRemark)
		if _, err := a.attendanceRepo.Update(ctx, current); err != nil {
			return err
		}
		closed = true
		return nil
	})
	return closed, err
}

// appendRemark joins remark onto existing the way consolidation does.
func appendRemark(existing, remark string) string {
	remark = strings.TrimSpace(remark)
	switch {
	case remark == "" || strings.Contains(existing, remark):
		return existing
	case existing == "":
		return remark
	default:
		return existing + " | " + remark
	}
}

func memberClaims(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.OrganizationID == "" {
		return jwt.Claims{}, user.ErrOrganizationIDRequired
	}
	return claims, nil
}
