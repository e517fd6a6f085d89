package subscription

import (
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
)

// Info is the access tier derived from an organization's stored state.
type Info struct {
	Status        Status
	DaysRemaining *int
	IsReadOnly    bool
	IsBlocked     bool
	ShowAds       bool
	IsSuperAdmin  bool
	TrialEndDate  *time.Time
}

// Evaluate derives access for a user with role from org at now. It has no
// side effects: a lapsed trial keeps its stored TRIAL status and stays
// writable until it is flipped to EXPIRED explicitly.
func Evaluate(org Organization, role user.Role, now time.Time) Info {
	info := Info{
		Status:       org.SubscriptionStatus,
		IsBlocked:    org.SubscriptionStatus == StatusSuspended,
		IsReadOnly:   org.SubscriptionStatus == StatusExpired || org.SubscriptionStatus == StatusUnknown,
		ShowAds:      org.SubscriptionStatus == StatusAdSupported,
		IsSuperAdmin: role.IsSuperAdmin(),
	}

	if org.SubscriptionStatus == StatusTrial {
		info.TrialEndDate = org.TrialEndDate
	}

	if info.IsSuperAdmin {
		info.IsBlocked = false
		info.IsReadOnly = false
		return info
	}

	if org.SubscriptionStatus == StatusTrial && org.TrialEndDate != nil {
		days := DaysBetween(now, *org.TrialEndDate)
		if days < 0 {
			days = 0
		}
		info.DaysRemaining = &days
	}

	return info
}

// DaysBetween returns the number of whole UTC calendar days from a to b.
// Time of day is ignored.
func DaysBetween(a, b time.Time) int {
	return int((midnightUTC(b).Unix() - midnightUTC(a).Unix()) / 86400)
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CanWrite reports whether info permits mutating operations.
func CanWrite(info Info) bool {
	return !info.IsReadOnly && !info.IsBlocked
}

// Authorize returns nil when writes are allowed, or the reason they are not.
// Suspension takes precedence over expiry.
func Authorize(info Info) error {
	switch {
	case info.IsBlocked:
		return ErrOrganizationSuspended
	case info.IsReadOnly && info.Status == StatusUnknown:
		return ErrUnknownSubscriptionStatus
	case info.IsReadOnly:
		return ErrSubscriptionExpired
	default:
		return nil
	}
}

// AuthorizeAccess is the read-path check: only suspension denies reads.
func AuthorizeAccess(info Info) error {
	if info.IsBlocked {
		return ErrOrganizationSuspended
	}
	return nil
}
