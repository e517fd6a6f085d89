package postgresqltest

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(func() {
		_ = setup.TruncateAllTables(context.Background())
		setup.Close()
	})
	return setup
}

func createTestOrganization(t *testing.T, setup *TestDatabaseSetup, status subscription.Status, trialEnd *time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := setup.DB.Exec(context.Background(), `
		INSERT INTO organizations (id, name, subscription_status, trial_end_date)
		VALUES ($1, $2, $3, $4)`, id, "Org "+id[:8], string(status), trialEnd)
	require.NoError(t, err)
	return id
}

func TestShiftRepository(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	orgID := createTestOrganization(t, setup, subscription.StatusTrial, nil)
	repo := postgresql.NewShiftRepository(setup.DB)

	morning := shift.Shift{
		ID: uuid.NewString(), OrganizationID: orgID, Name: "Morning",
		StartTime: "08:00", EndTime: "16:00", LateGracePeriod: 10,
		EarliestCheckIn: "07:00", WorkingDays: []string{"Monday", "Tuesday"}, IsDefault: true,
	}
	created, err := repo.Create(ctx, morning)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, shift.Shift{ID: uuid.NewString(), OrganizationID: orgID, Name: "Morning", StartTime: "09:00", EndTime: "17:00"})
	assert.ErrorIs(t, err, shift.ErrShiftNameExists)

	evening := shift.Shift{ID: uuid.NewString(), OrganizationID: orgID, Name: "Evening", StartTime: "16:00", EndTime: "23:00"}
	_, err = repo.Create(ctx, evening)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, morning.ID, orgID)
	require.NoError(t, err)
	assert.Equal(t, "07:00", got.EarliestCheckIn)
	assert.Empty(t, got.AutoSessionCloseTime)
	assert.Equal(t, []string{"Monday", "Tuesday"}, got.WorkingDays)

	shifts, err := repo.List(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, morning.ID, shifts[0].ID)

	require.NoError(t, repo.ClearDefaults(ctx, orgID))
	require.NoError(t, repo.MarkDefault(ctx, evening.ID, orgID))
	got, err = repo.GetByID(ctx, evening.ID, orgID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	evening.EndTime = "22:00"
	updated, err := repo.Update(ctx, evening)
	require.NoError(t, err)
	assert.Equal(t, "22:00", updated.EndTime)
	assert.True(t, updated.IsDefault)

	require.NoError(t, repo.Delete(ctx, evening.ID, orgID))
	assert.ErrorIs(t, repo.Delete(ctx, evening.ID, orgID), shift.ErrShiftNotFound)
	_, err = repo.GetByID(ctx, evening.ID, orgID)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestOverrideAndAssignmentRepositories(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	orgID := createTestOrganization(t, setup, subscription.StatusTrial, nil)

	shiftRepo := postgresql.NewShiftRepository(setup.DB)
	overrides := postgresql.NewOverrideRepository(setup.DB)
	assignments := postgresql.NewAssignmentRepository(setup.DB)

	sh := shift.Shift{ID: uuid.NewString(), OrganizationID: orgID, Name: "Regular", StartTime: "09:00", EndTime: "17:00"}
	_, err := shiftRepo.Create(ctx, sh)
	require.NoError(t, err)

	later := shift.ShiftOverride{ID: uuid.NewString(), OrganizationID: orgID, EmployeeID: "emp-1", ShiftID: sh.ID, StartDate: "2026-02-01", EndDate: "2026-02-05"}
	earlier := shift.ShiftOverride{ID: uuid.NewString(), OrganizationID: orgID, EmployeeID: "emp-1", ShiftID: sh.ID, StartDate: "2026-01-20", EndDate: "2026-01-25"}
	_, err = overrides.Create(ctx, later)
	require.NoError(t, err)
	_, err = overrides.Create(ctx, earlier)
	require.NoError(t, err)

	list, err := overrides.ListByOrganization(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, "2026-01-20", list[0].StartDate)
	assert.Equal(t, "2026-01-25", list[0].EndDate)

	none, err := overrides.ListByEmployee(ctx, "emp-2", orgID)
	require.NoError(t, err)
	assert.Empty(t, none)

	assigned, err := assignments.GetAssignedShiftID(ctx, "emp-1", orgID)
	require.NoError(t, err)
	assert.Nil(t, assigned)

	require.NoError(t, assignments.SetAssignedShiftID(ctx, "emp-1", orgID, &sh.ID))
	assigned, err = assignments.GetAssignedShiftID(ctx, "emp-1", orgID)
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, sh.ID, *assigned)

	all, err := assignments.ListAssignments(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"emp-1": sh.ID}, all)

	require.NoError(t, assignments.ClearShift(ctx, sh.ID, orgID))
	assigned, err = assignments.GetAssignedShiftID(ctx, "emp-1", orgID)
	require.NoError(t, err)
	assert.Nil(t, assigned)

	// Overrides follow their shift.
	require.NoError(t, shiftRepo.Delete(ctx, sh.ID, orgID))
	list, err = overrides.ListByOrganization(ctx, orgID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAttendanceRepository(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	orgID := createTestOrganization(t, setup, subscription.StatusTrial, nil)
	repo := postgresql.NewAttendanceRepository(setup.DB)

	in := attendance.Attendance{
		ID: uuid.NewString(), OrganizationID: orgID, EmployeeID: "emp-1", EmployeeName: "Budi",
		Date: "2026-04-14", CheckIn: "08:55", CheckOut: attendance.NoTime, Status: attendance.StatusPresent,
		Location: &attendance.Location{Latitude: -6.2, Longitude: 106.8, Address: "Jakarta"},
		DutyType: attendance.DutyTypeOffice,
	}
	_, err := repo.Create(ctx, in)
	require.NoError(t, err)

	open, err := repo.GetOpenPunch(ctx, orgID, "emp-1", "2026-04-14")
	require.NoError(t, err)
	assert.Equal(t, in.ID, open.ID)
	require.NotNil(t, open.Location)
	assert.Equal(t, "Jakarta", open.Location.Address)

	stale, err := repo.ListOpenSessions(ctx, "2026-04-15")
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	open.CheckOut = "17:00"
	updated, err := repo.Update(ctx, open)
	require.NoError(t, err)
	assert.Equal(t, "17:00", updated.CheckOut)

	_, err = repo.GetOpenPunch(ctx, orgID, "emp-1", "2026-04-14")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = repo.Create(ctx, attendance.Attendance{
		ID: uuid.NewString(), OrganizationID: orgID, EmployeeID: "emp-2", EmployeeName: "Siti",
		Date: "2026-04-15", CheckIn: attendance.NoTime, CheckOut: "17:10", Status: attendance.StatusPresent,
		DutyType: attendance.DutyTypeRemote,
	})
	require.NoError(t, err)

	rows, err := repo.ListByRange(ctx, attendance.RangeFilter{OrganizationID: orgID, StartDate: "2026-04-14", EndDate: "2026-04-15"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-04-14", rows[0].Date)
	assert.Nil(t, rows[1].Location)

	employee := "emp-2"
	rows, err = repo.ListByRange(ctx, attendance.RangeFilter{OrganizationID: orgID, EmployeeID: &employee, StartDate: "2026-04-14", EndDate: "2026-04-15"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = repo.GetByID(ctx, in.ID, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestOrganizationAndDonationRepositories(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	lapsedEnd := now.AddDate(0, 0, -2)
	lapsed := createTestOrganization(t, setup, subscription.StatusTrial, &lapsedEnd)
	futureEnd := now.AddDate(0, 0, 5)
	running := createTestOrganization(t, setup, subscription.StatusTrial, &futureEnd)
	legacy := createTestOrganization(t, setup, subscription.Status("PREMIUM"), nil)

	orgs := postgresql.NewOrganizationRepository(setup.DB)

	org, err := orgs.GetByID(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusUnknown, org.SubscriptionStatus)

	_, err = orgs.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, subscription.ErrOrganizationNotFound)

	candidates, err := orgs.ListLapseCandidates(ctx, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, lapsed, candidates[0].ID)

	org, err = orgs.GetByID(ctx, running)
	require.NoError(t, err)
	subEnd := now.AddDate(1, 0, 0)
	org.SubscriptionStatus = subscription.StatusActive
	org.TrialEndDate = nil
	org.SubscriptionEndDate = &subEnd
	updated, err := orgs.UpdateSubscription(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, updated.SubscriptionStatus)
	assert.Nil(t, updated.TrialEndDate)
	require.NotNil(t, updated.SubscriptionEndDate)
	assert.WithinDuration(t, subEnd, *updated.SubscriptionEndDate, time.Millisecond)

	donations := postgresql.NewDonationRepository(setup.DB)
	_, err = donations.Create(ctx, subscription.Donation{
		ID: uuid.NewString(), OrganizationID: running, Tier: subscription.TierOneYear,
		Amount: decimal.RequireFromString("150000.50"), ApprovedBy: "admin-1", ApprovedAt: now,
	})
	require.NoError(t, err)

	list, err := donations.ListByOrganization(ctx, running)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, subscription.TierOneYear, list[0].Tier)
	assert.True(t, decimal.RequireFromString("150000.5").Equal(list[0].Amount))
}

func TestLockingReads(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	orgID := createTestOrganization(t, setup, subscription.StatusTrial, nil)
	orgs := postgresql.NewOrganizationRepository(setup.DB)
	attendances := postgresql.NewAttendanceRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	punch := attendance.Attendance{
		ID: uuid.NewString(), OrganizationID: orgID, EmployeeID: "emp-1", EmployeeName: "Budi",
		Date: "2026-04-14", CheckIn: "09:00", CheckOut: attendance.NoTime, Status: attendance.StatusPresent,
		DutyType: attendance.DutyTypeOffice,
	}
	_, err := attendances.Create(ctx, punch)
	require.NoError(t, err)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		org, err := orgs.GetByIDForUpdate(ctx, orgID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrial, org.SubscriptionStatus)

		_, err = orgs.GetByIDForUpdate(ctx, uuid.NewString())
		assert.ErrorIs(t, err, subscription.ErrOrganizationNotFound)

		locked, err := attendances.GetForUpdate(ctx, punch.ID, orgID)
		require.NoError(t, err)
		assert.True(t, locked.IsOpen())

		_, err = attendances.GetForUpdate(ctx, punch.ID, uuid.NewString())
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
		return nil
	})
	require.NoError(t, err)
}
