package subscription

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluate_TrialDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)

	for _, hour := range []int{0, 9, 23} {
		end := time.Date(2026, 3, 13, hour, 5, 0, 0, time.UTC)
		info := Evaluate(Organization{SubscriptionStatus: StatusTrial, TrialEndDate: &end}, user.RoleAdmin, now)

		require.NotNil(t, info.DaysRemaining)
		assert.Equal(t, 3, *info.DaysRemaining)
		assert.True(t, CanWrite(info))
	}
}

func TestEvaluate_TrialEndingTodayIsZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)

	info := Evaluate(Organization{SubscriptionStatus: StatusTrial, TrialEndDate: &end}, user.RoleEmployee, now)
	require.NotNil(t, info.DaysRemaining)
	assert.Equal(t, 0, *info.DaysRemaining)
}

func TestEvaluate_LapsedTrialClampsAndStaysWritable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	org := Organization{SubscriptionStatus: StatusTrial, TrialEndDate: timePtr(now.AddDate(0, 0, -1))}

	info := Evaluate(org, user.RoleAdmin, now)
	require.NotNil(t, info.DaysRemaining)
	assert.Equal(t, 0, *info.DaysRemaining)
	assert.Equal(t, StatusTrial, info.Status)
	assert.False(t, info.IsReadOnly)
	assert.True(t, CanWrite(info), "stored status governs writes until it is flipped")
}

func TestEvaluate_TrialEndDateInOtherZone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// 2026-03-12 02:00 WIB is 2026-03-11 19:00 UTC.
	end := time.Date(2026, 3, 12, 2, 0, 0, 0, jakarta)

	info := Evaluate(Organization{SubscriptionStatus: StatusTrial, TrialEndDate: &end}, user.RoleAdmin, now)
	require.NotNil(t, info.DaysRemaining)
	assert.Equal(t, 1, *info.DaysRemaining)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(start, start.Add(-23*time.Hour)))
	assert.Equal(t, 1, DaysBetween(start, start.Add(time.Minute)))
	assert.Equal(t, -1, DaysBetween(start, start.AddDate(0, 0, -1)))
	assert.Equal(t, 146097, DaysBetween(start, time.Date(2426, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -146097, DaysBetween(time.Date(2426, 1, 1, 0, 0, 0, 0, time.UTC), start))
}

func TestEvaluate_NoDaysRemainingOutsideTrial(t *testing.T) {
	now := time.Now()
	end := now.AddDate(0, 0, 5)

	for _, status := range []Status{StatusActive, StatusExpired, StatusAdSupported, StatusSuspended} {
		info := Evaluate(Organization{SubscriptionStatus: status, TrialEndDate: &end}, user.RoleAdmin, now)
		assert.Nil(t, info.DaysRemaining, status)
		assert.Nil(t, info.TrialEndDate, status)
	}

	info := Evaluate(Organization{SubscriptionStatus: StatusTrial}, user.RoleAdmin, now)
	assert.Nil(t, info.DaysRemaining)
}

func TestEvaluate_Flags(t *testing.T) {
	now := time.Now()
	tests := []struct {
		status   Status
		readOnly bool
		blocked  bool
		ads      bool
		err      error
	}{
		{StatusTrial, false, false, false, nil},
		{StatusActive, false, false, false, nil},
		{StatusAdSupported, false, false, true, nil},
		{StatusExpired, true, false, false, ErrSubscriptionExpired},
		{StatusSuspended, false, true, false, ErrOrganizationSuspended},
		{StatusUnknown, true, false, false, ErrUnknownSubscriptionStatus},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			info := Evaluate(Organization{SubscriptionStatus: tt.status}, user.RoleAdmin, now)
			assert.Equal(t, tt.readOnly, info.IsReadOnly)
			assert.Equal(t, tt.blocked, info.IsBlocked)
			assert.Equal(t, tt.ads, info.ShowAds)
			assert.Equal(t, tt.err == nil, CanWrite(info))
			assert.ErrorIs(t, Authorize(info), tt.err)
			if tt.err == nil {
				assert.NoError(t, Authorize(info))
			}
		})
	}
}

func TestEvaluate_SuspendedIgnoresTrialDate(t *testing.T) {
	now := time.Now()
	org := Organization{SubscriptionStatus: StatusSuspended, TrialEndDate: timePtr(now.AddDate(0, 1, 0))}

	info := Evaluate(org, user.RoleAdmin, now)
	assert.True(t, info.IsBlocked)
	assert.False(t, CanWrite(info))
	assert.ErrorIs(t, AuthorizeAccess(info), ErrOrganizationSuspended)
}

func TestEvaluate_ExpiredStillReadable(t *testing.T) {
	info := Evaluate(Organization{SubscriptionStatus: StatusExpired}, user.RoleEmployee, time.Now())
	assert.NoError(t, AuthorizeAccess(info))
	assert.ErrorIs(t, Authorize(info), ErrSubscriptionExpired)
}

func TestEvaluate_SuperAdminBypass(t *testing.T) {
	now := time.Now()
	end := now.AddDate(0, 0, 3)

	for _, status := range []Status{StatusSuspended, StatusExpired, StatusUnknown} {
		info := Evaluate(Organization{SubscriptionStatus: status}, user.RoleSuperAdmin, now)
		assert.True(t, info.IsSuperAdmin)
		assert.False(t, info.IsBlocked)
		assert.False(t, info.IsReadOnly)
		assert.True(t, CanWrite(info))
		assert.NoError(t, Authorize(info))
	}

	info := Evaluate(Organization{SubscriptionStatus: StatusTrial, TrialEndDate: &end}, user.RoleSuperAdmin, now)
	assert.Nil(t, info.DaysRemaining)

	info = Evaluate(Organization{SubscriptionStatus: StatusAdSupported}, user.RoleSuperAdmin, now)
	assert.True(t, info.ShowAds)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusAdSupported, ParseStatus("ad_supported"))
	assert.Equal(t, StatusTrial, ParseStatus(" TRIAL "))
	assert.Equal(t, StatusUnknown, ParseStatus("past_due"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
}
