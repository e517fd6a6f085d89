package subscription

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")

	// Access errors. Expired and suspended stay distinct all the way to
	// the client.
	ErrSubscriptionExpired       = errors.New("subscription has expired, the organization is read-only")
	ErrOrganizationSuspended     = errors.New("organization is suspended")
	ErrUnknownSubscriptionStatus = errors.New("subscription status is not recognized, the organization is read-only")

	// Transition errors
	ErrInvalidTransition   = errors.New("subscription status does not allow this operation")
	ErrInvalidStatus       = errors.New("invalid subscription status")
	ErrInvalidDonationTier = errors.New("donation tier must be one of 3_MONTHS, 6_MONTHS, 1_YEAR, LIFETIME")
	ErrInvalidExtension    = errors.New("trial extension must be a positive number of days")
	ErrInvalidAmount       = errors.New("donation amount must be greater than zero")
)
