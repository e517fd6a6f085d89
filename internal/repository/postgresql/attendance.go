package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, organization_id, employee_id, employee_name, to_char(date, 'YYYY-MM-DD'),
	check_in, check_out, status,
	latitude, longitude, address,
	remarks, selfie_ref, duty_type, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		a                   attendance.Attendance
		latitude, longitude *float64
		address             *string
	)
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.EmployeeID, &a.EmployeeName, &a.Date,
		&a.CheckIn, &a.CheckOut, &a.Status,
		&latitude, &longitude, &address,
		&a.Remarks, &a.SelfieRef, &a.DutyType, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if latitude != nil && longitude != nil {
		a.Location = &attendance.Location{Latitude: *latitude, Longitude: *longitude}
		if address != nil {
			a.Location.Address = *address
		}
	}
	return a, nil
}

func locationArgs(l *attendance.Location) (latitude, longitude *float64, address *string) {
	if l == nil {
		return nil, nil, nil
	}
	lat, lng := l.Latitude, l.Longitude
	if l.Address != "" {
		addr := l.Address
		address = &addr
	}
	return &lat, &lng, address
}

func (r *attendanceRepository) list(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return records, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	latitude, longitude, address := locationArgs(a.Location)
	query := `
		INSERT INTO attendances (
			id, organization_id, employee_id, employee_name, date,
			check_in, check_out, status,
			latitude, longitude, address,
			remarks, selfie_ref, duty_type
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		a.ID, a.OrganizationID, a.EmployeeID, a.EmployeeName, a.Date,
		a.CheckIn, a.CheckOut, a.Status,
		latitude, longitude, address,
		a.Remarks, a.SelfieRef, a.DutyType,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id, organizationID string) (attendance.Attendance, error) {
	return r.getByID(ctx, id, organizationID, ``)
}

// GetForUpdate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetForUpdate(ctx context.Context, id, organizationID string) (attendance.Attendance, error) {
	return r.getByID(ctx, id, organizationID, ` FOR UPDATE`)
}

func (r *attendanceRepository) getByID(ctx context.Context, id, organizationID, lock string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE id = $1 AND organization_id = $2` + lock

	a, err := scanAttendance(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	latitude, longitude, address := locationArgs(a.Location)
	query := `
		UPDATE attendances SET
			check_in = $3, check_out = $4, status = $5,
			latitude = $6, longitude = $7, address = $8,
			remarks = $9, selfie_ref = $10, duty_type = $11,
			updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		a.ID, a.OrganizationID,
		a.CheckIn, a.CheckOut, a.Status,
		latitude, longitude, address,
		a.Remarks, a.SelfieRef, a.DutyType,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	return updated, nil
}

// ListByRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByRange(ctx context.Context, filter attendance.RangeFilter) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE organization_id = $1
		  AND date BETWEEN $2::date AND $3::date`
	args := []any{filter.OrganizationID, filter.StartDate, filter.EndDate}

	if filter.EmployeeID != nil {
		query += ` AND employee_id = $4`
		args = append(args, *filter.EmployeeID)
	}
	query += ` ORDER BY date, created_at, id`

	return r.list(ctx, query, args...)
}

// GetOpenPunch implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetOpenPunch(ctx context.Context, organizationID, employeeID, date string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE organization_id = $1
		  AND employee_id = $2
		  AND date = $3::date
		  AND check_in <> '-'
		  AND check_out = '-'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE`

	a, err := scanAttendance(q.QueryRow(ctx, query, organizationID, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open punch: %w", err)
	}
	return a, nil
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenSessions(ctx context.Context, date string) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date <= $1::date
		  AND check_in <> '-'
		  AND check_out = '-'
		ORDER BY organization_id, date, created_at, id`

	return r.list(ctx, query, date)
}
