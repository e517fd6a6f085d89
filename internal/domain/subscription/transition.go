package subscription

import (
	"slices"
	"time"
)

// Event is an administrative action that changes subscription status.
type Event string

const (
	EventDonationApproved    Event = "donation_approved"
	EventTrialExtended       Event = "trial_extended"
	EventAdSupportedAccepted Event = "ad_supported_accepted"
	EventSuspended           Event = "suspended"
	EventStatusSet           Event = "status_set"
)

var allStatuses = append(slices.Clone(Statuses), StatusUnknown)

// validTransitions lists, per event, the statuses it may start from.
var validTransitions = map[Event][]Status{
	EventDonationApproved:    {StatusTrial, StatusExpired, StatusActive, StatusAdSupported},
	EventTrialExtended:       {StatusTrial},
	EventAdSupportedAccepted: {StatusTrial, StatusActive, StatusExpired},
	EventSuspended:           allStatuses,
	EventStatusSet:           allStatuses,
}

// CanTransition reports whether event may be applied to an organization in
// status from.
func CanTransition(from Status, event Event) bool {
	return slices.Contains(validTransitions[event], from)
}

// ApproveDonation activates org for the tier's length, starting from the
// later of now and the current subscription end. Lifetime clears the end date.
func ApproveDonation(org Organization, tier DonationTier, now time.Time) (Organization, error) {
	if tier == TierUnknown || tier == "" {
		return org, ErrInvalidDonationTier
	}
	if !CanTransition(org.SubscriptionStatus, EventDonationApproved) {
		return org, ErrInvalidTransition
	}

	switch {
	case tier == TierLifetime:
		org.SubscriptionEndDate = nil
	case org.SubscriptionStatus == StatusActive && org.SubscriptionEndDate == nil:
		// Already lifetime.
	default:
		base := now.UTC()
		if org.SubscriptionStatus == StatusActive && org.SubscriptionEndDate.After(base) {
			base = org.SubscriptionEndDate.UTC()
		}
		end := base.AddDate(0, tier.months(), 0)
		org.SubscriptionEndDate = &end
	}
	return setStatus(org, StatusActive), nil
}

// ExtendTrial pushes the trial end forward by days. A trial without an end
// date is extended from now.
func ExtendTrial(org Organization, days int, now time.Time) (Organization, error) {
	if days <= 0 {
		return org, ErrInvalidExtension
	}
	if !CanTransition(org.SubscriptionStatus, EventTrialExtended) {
		return org, ErrInvalidTransition
	}

	base := now.UTC()
	if org.TrialEndDate != nil {
		base = org.TrialEndDate.UTC()
	}
	end := base.AddDate(0, 0, days)
	org.TrialEndDate = &end
	return org, nil
}

// AcceptAdSupported moves org into ad-supported mode.
func AcceptAdSupported(org Organization) (Organization, error) {
	if org.SubscriptionStatus == StatusAdSupported {
		return org, nil
	}
	if !CanTransition(org.SubscriptionStatus, EventAdSupportedAccepted) {
		return org, ErrInvalidTransition
	}
	org.SubscriptionEndDate = nil
	return setStatus(org, StatusAdSupported), nil
}

// Suspend blocks org. Only an explicit SetStatus lifts it.
func Suspend(org Organization) Organization {
	return setStatus(org, StatusSuspended)
}

// SetStatus is the unrestricted administrative edit. trialEnd is applied
// only when status is TRIAL.
func SetStatus(org Organization, status Status, trialEnd *time.Time) (Organization, error) {
	if status == StatusUnknown || ParseStatus(string(status)) != status {
		return org, ErrInvalidStatus
	}
	org = setStatus(org, status)
	if status == StatusTrial && trialEnd != nil {
		end := trialEnd.UTC()
		org.TrialEndDate = &end
	}
	return org, nil
}

// setStatus changes the status and clears the trial end date, which has no
// meaning outside TRIAL.
func setStatus(org Organization, status Status) Organization {
	org.SubscriptionStatus = status
	if status != StatusTrial {
		org.TrialEndDate = nil
	}
	return org
}

// IsLapsed reports whether org should be flipped to EXPIRED at now: a trial
// whose end day is before today, or an active subscription past its end.
func IsLapsed(org Organization, now time.Time) bool {
	switch org.SubscriptionStatus {
	case StatusTrial:
		return org.TrialEndDate != nil && DaysBetween(now, *org.TrialEndDate) < 0
	case StatusActive:
		return org.SubscriptionEndDate != nil && org.SubscriptionEndDate.Before(now)
	default:
		return false
	}
}

// Expire flips a lapsed organization to EXPIRED.
func Expire(org Organization) Organization {
	return setStatus(org, StatusExpired)
}
