package subscription

import (
	"context"
	"time"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (Organization, error)

	// GetByIDForUpdate locks the organization row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Organization, error)

	// UpdateSubscription persists status, trial end and subscription end.
	UpdateSubscription(ctx context.Context, org Organization) (Organization, error)

	// ListLapseCandidates returns TRIAL organizations whose trial ended before
	// now and ACTIVE organizations whose subscription ended before now.
	ListLapseCandidates(ctx context.Context, now time.Time) ([]Organization, error)
}

type DonationRepository interface {
	Create(ctx context.Context, donation Donation) (Donation, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]Donation, error)
}
