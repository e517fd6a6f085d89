package subscription

import (
	"context"
	"time"
)

type SubscriptionService interface {
	// GetInfo evaluates the caller's organization.
	GetInfo(ctx context.Context) (InfoResponse, error)

	// AcceptAdSupported records the caller's organization's ad consent.
	AcceptAdSupported(ctx context.Context) (InfoResponse, error)

	// Super admin operations
	ApproveDonation(ctx context.Context, req ApproveDonationRequest) (OrganizationResponse, error)
	ExtendTrial(ctx context.Context, req ExtendTrialRequest) (OrganizationResponse, error)
	ApproveAdSupported(ctx context.Context, organizationID string) (OrganizationResponse, error)
	Suspend(ctx context.Context, req SuspendRequest) (OrganizationResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (OrganizationResponse, error)
	ListDonations(ctx context.Context, organizationID string) ([]DonationResponse, error)

	// ExpireLapsed flips lapsed trials and subscriptions to EXPIRED. It
	// returns the number of organizations changed.
	ExpireLapsed(ctx context.Context, now time.Time) (int, error)
}

// WriteGuard is consulted before every mutation in other services.
type WriteGuard interface {
	// EnsureWritable returns ErrSubscriptionExpired, ErrOrganizationSuspended
	// or ErrUnknownSubscriptionStatus when organizationID may not write.
	EnsureWritable(ctx context.Context, organizationID string) error
}

// AccessEvaluator is what the HTTP layer uses to gate requests.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, organizationID string) (Info, error)
}
