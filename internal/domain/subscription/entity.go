package subscription

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the stored subscription state of an organization.
type Status string

const (
	StatusTrial       Status = "TRIAL"
	StatusActive      Status = "ACTIVE"
	StatusExpired     Status = "EXPIRED"
	StatusSuspended   Status = "SUSPENDED"
	StatusAdSupported Status = "AD_SUPPORTED"
	// StatusUnknown holds legacy or unrecognized stored values. It is gated
	// like EXPIRED until an administrator sets a real status.
	StatusUnknown Status = "UNKNOWN"
)

var Statuses = []Status{StatusTrial, StatusActive, StatusExpired, StatusSuspended, StatusAdSupported}

// ParseStatus maps a stored value onto Status, falling back to StatusUnknown.
func ParseStatus(s string) Status {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == candidate {
			return st
		}
	}
	return StatusUnknown
}

// DonationTier is the length of access bought by an approved donation.
type DonationTier string

const (
	TierThreeMonths DonationTier = "3_MONTHS"
	TierSixMonths   DonationTier = "6_MONTHS"
	TierOneYear     DonationTier = "1_YEAR"
	TierLifetime    DonationTier = "LIFETIME"
	TierUnknown     DonationTier = "UNKNOWN"
)

func ParseDonationTier(s string) DonationTier {
	switch DonationTier(strings.ToUpper(strings.TrimSpace(s))) {
	case TierThreeMonths:
		return TierThreeMonths
	case TierSixMonths:
		return TierSixMonths
	case TierOneYear:
		return TierOneYear
	case TierLifetime:
		return TierLifetime
	default:
		return TierUnknown
	}
}

// months returns the access length of the tier. Lifetime and unknown tiers
// report zero.
func (t DonationTier) months() int {
	switch t {
	case TierThreeMonths:
		return 3
	case TierSixMonths:
		return 6
	case TierOneYear:
		return 12
	default:
		return 0
	}
}

// Organization is the subscription-relevant slice of a tenant.
type Organization struct {
	ID                 string
	Name               string
	SubscriptionStatus Status
	// TrialEndDate is only meaningful while the status is TRIAL.
	TrialEndDate *time.Time
	// SubscriptionEndDate bounds an ACTIVE subscription. Nil means no expiry.
	SubscriptionEndDate *time.Time
	UpdatedAt           time.Time
}

// Donation records an approved donation and the tier it bought.
type Donation struct {
	ID             string
	OrganizationID string
	Tier           DonationTier
	Amount         decimal.Decimal
	ApprovedBy     string
	ApprovedAt     time.Time
	Note           *string
}
