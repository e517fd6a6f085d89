package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// RecordPunch stores a check-in or check-out for the caller's organization.
	RecordPunch(ctx context.Context, req PunchRequest) (AttendanceResponse, error)

	// DailyReport consolidates raw punches into one row per employee and day.
	DailyReport(ctx context.Context, filter DailyReportFilter) (DailyReportResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// CorrectAttendance lets an administrator fix a raw record.
	CorrectAttendance(ctx context.Context, req CorrectAttendanceRequest) (AttendanceResponse, error)

	// CloseStaleSessions checks out open punches whose shift auto-close time
	// has passed. It returns the number of records closed.
	CloseStaleSessions(ctx context.Context, now time.Time) (int, error)
}
