package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

type SubscriptionServiceImpl struct {
	organizationRepo subscription.OrganizationRepository
	donationRepo     subscription.DonationRepository
	tx               database.Transactor
	now              func() time.Time
}

// NewSubscriptionService builds the service. A nil clock means time.Now.
func NewSubscriptionService(
	organizationRepo subscription.OrganizationRepository,
	donationRepo subscription.DonationRepository,
	tx database.Transactor,
	clock func() time.Time,
) *SubscriptionServiceImpl {
	if clock == nil {
		clock = time.Now
	}
	return &SubscriptionServiceImpl{
		organizationRepo: organizationRepo,
		donationRepo:     donationRepo,
		tx:               tx,
		now:              clock,
	}
}

var (
	_ subscription.SubscriptionService = (*SubscriptionServiceImpl)(nil)
	_ subscription.WriteGuard          = (*SubscriptionServiceImpl)(nil)
	_ subscription.AccessEvaluator     = (*SubscriptionServiceImpl)(nil)
)

// Evaluate implements subscription.AccessEvaluator. The role comes from the
// caller's claims; a context without claims is evaluated as an ordinary user.
func (s *SubscriptionServiceImpl) Evaluate(ctx context.Context, organizationID string) (subscription.Info, error) {
	role := user.RoleUnknown
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
		role = claims.Role
	}

	org, err := s.organizationRepo.GetByID(ctx, organizationID)
	if err != nil {
		return subscription.Info{}, fmt.Errorf("get organization: %w", err)
	}
	return subscription.Evaluate(org, role, s.now()), nil
}

// EnsureWritable implements subscription.WriteGuard.
func (s *SubscriptionServiceImpl) EnsureWritable(ctx context.Context, organizationID string) error {
	info, err := s.Evaluate(ctx, organizationID)
	if err != nil {
		return err
	}
	return subscription.Authorize(info)
}

// GetInfo implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) GetInfo(ctx context.Context) (subscription.InfoResponse, error) {
	claims, err := organizationClaims(ctx)
	if err != nil {
		return subscription.InfoResponse{}, err
	}

	info, err := s.Evaluate(ctx, claims.OrganizationID)
	if err != nil {
		return subscription.InfoResponse{}, err
	}
	return subscription.NewInfoResponse(claims.OrganizationID, info), nil
}

// AcceptAdSupported implements subscription.SubscriptionService. Expired
// organizations may accept, since it is their way back to write access.
func (s *SubscriptionServiceImpl) AcceptAdSupported(ctx context.Context) (subscription.InfoResponse, error) {
	claims, err := organizationClaims(ctx)
	if err != nil {
		return subscription.InfoResponse{}, err
	}
	if !claims.Role.CanManageOrganization() {
		return subscription.InfoResponse{}, user.ErrAdminAccessRequired
	}

	org, err := s.transition(ctx, claims.OrganizationID, "ad_consent", func(org subscription.Organization) (subscription.Organization, error) {
		if org.SubscriptionStatus == subscription.StatusSuspended {
			return org, subscription.ErrOrganizationSuspended
		}
		return subscription.AcceptAdSupported(org)
	})
	if err != nil {
		return subscription.InfoResponse{}, err
	}

	return subscription.NewInfoResponse(org.ID, subscription.Evaluate(org, claims.Role, s.now())), nil
}

// ApproveDonation implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) ApproveDonation(ctx context.Context, req subscription.ApproveDonationRequest) (subscription.OrganizationResponse, error) {
	claims, err := superAdminClaims(ctx)
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return subscription.OrganizationResponse{}, err
	}

	tier := subscription.ParseDonationTier(req.Tier)
	now := s.now()

	var updated subscription.Organization
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		org, err := s.transition(ctx, req.OrganizationID, "donation_approved", func(org subscription.Organization) (subscription.Organization, error) {
			return subscription.ApproveDonation(org, tier, now)
		})
		if err != nil {
			return err
		}
		updated = org

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate donation id: %w", err)
		}
		_, err = s.donationRepo.Create(ctx, subscription.Donation{
			ID:             id.String(),
			OrganizationID: org.ID,
			Tier:           tier,
			Amount:         req.Amount,
			ApprovedBy:     claims.UserID,
			ApprovedAt:     now,
			Note:           req.Note,
		})
		if err != nil {
			return fmt.Errorf("record donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}

	slog.Info("donation approved",
		"organization_id", updated.ID,
		"tier", tier,
		"amount", req.Amount.StringFixed(2),
		"approved_by", claims.UserID,
	)
	return subscription.NewOrganizationResponse(updated), nil
}

// ExtendTrial implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) ExtendTrial(ctx context.Context, req subscription.ExtendTrialRequest) (subscription.OrganizationResponse, error) {
	if _, err := superAdminClaims(ctx); err != nil {
		return subscription.OrganizationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return subscription.OrganizationResponse{}, err
	}

	now := s.now()
	org, err := s.transition(ctx, req.OrganizationID, "trial_extended", func(org subscription.Organization) (subscription.Organization, error) {
		return subscription.ExtendTrial(org, req.Days, now)
	})
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}
	return subscription.NewOrganizationResponse(org), nil
}

// ApproveAdSupported implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) ApproveAdSupported(ctx context.Context, organizationID string) (subscription.OrganizationResponse, error) {
	if _, err := superAdminClaims(ctx); err != nil {
		return subscription.OrganizationResponse{}, err
	}

	org, err := s.transition(ctx, organizationID, "ad_supported_approved", subscription.AcceptAdSupported)
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}
	return subscription.NewOrganizationResponse(org), nil
}

// Suspend implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) Suspend(ctx context.Context, req subscription.SuspendRequest) (subscription.OrganizationResponse, error) {
	claims, err := superAdminClaims(ctx)
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return subscription.OrganizationResponse{}, err
	}

	org, err := s.transition(ctx, req.OrganizationID, "suspended", func(org subscription.Organization) (subscription.Organization, error) {
		return subscription.Suspend(org), nil
	})
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}

	slog.Warn("organization suspended", "organization_id", org.ID, "reason", req.Reason, "by", claims.UserID)
	return subscription.NewOrganizationResponse(org), nil
}

// UpdateStatus implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) UpdateStatus(ctx context.Context, req subscription.UpdateStatusRequest) (subscription.OrganizationResponse, error) {
	if _, err := superAdminClaims(ctx); err != nil {
		return subscription.OrganizationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return subscription.OrganizationResponse{}, err
	}

	status := subscription.ParseStatus(req.Status)
	trialEnd := req.ParsedTrialEndDate()
	org, err := s.transition(ctx, req.OrganizationID, "status_set", func(org subscription.Organization) (subscription.Organization, error) {
		return subscription.SetStatus(org, status, trialEnd)
	})
	if err != nil {
		return subscription.OrganizationResponse{}, err
	}
	return subscription.NewOrganizationResponse(org), nil
}

// ListDonations implements subscription.SubscriptionService.
func (s *SubscriptionServiceImpl) ListDonations(ctx context.Context, organizationID string) ([]subscription.DonationResponse, error) {
	if _, err := superAdminClaims(ctx); err != nil {
		return nil, err
	}
	if _, err := s.organizationRepo.GetByID(ctx, organizationID); err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}

	donations, err := s.donationRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	resp := make([]subscription.DonationResponse, 0, len(donations))
	for _, d := range donations {
		resp = append(resp, subscription.NewDonationResponse(d))
	}
	return resp, nil
}

// ExpireLapsed implements subscription.SubscriptionService. Each candidate is
// re-read under a row lock and expired only if it is still lapsed, so a
// donation approved after the listing is kept. One failing organization does
// not stop the others.
func (s *SubscriptionServiceImpl) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.organizationRepo.ListLapseCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list lapse candidates: %w", err)
	}

	var errs []error
	expired := 0
	for _, candidate := range candidates {
		if !subscription.IsLapsed(candidate, now) {
			continue
		}
		_, err := s.transition(ctx, candidate.ID, "expired", func(org subscription.Organization) (subscription.Organization, error) {
			if !subscription.IsLapsed(org, now) {
				return subscription.Organization{}, errNoLongerLapsed
			}
			return subscription.Expire(org), nil
		})
		switch {
		case errors.Is(err, errNoLongerLapsed):
			slog.Debug("lapse candidate renewed before expiry", "organization_id", candidate.ID)
		case err != nil:
			slog.Error("failed to expire organization", "organization_id", candidate.ID, "error", err)
			errs = append(errs, fmt.Errorf("expire %s: %w", candidate.ID, err))
		default:
			expired++
		}
	}

	return expired, errors.Join(errs...)
}

var errNoLongerLapsed = errors.New("organization no longer lapsed")

// transition locks the organization, applies fn and persists the result in
// one transaction.
func (s *SubscriptionServiceImpl) transition(
	ctx context.Context,
	organizationID string,
	event string,
	fn func(subscription.Organization) (subscription.Organization, error),
) (subscription.Organization, error) {
	var updated subscription.Organization
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		org, err := s.organizationRepo.GetByIDForUpdate(ctx, organizationID)
		if err != nil {
			return fmt.Errorf("get organization: %w", err)
		}

		next, err := fn(org)
		if err != nil {
			return err
		}

		updated, err = s.organizationRepo.UpdateSubscription(ctx, next)
		if err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		slog.Info("subscription transition",
			"organization_id", organizationID,
			"event", event,
			"from", org.SubscriptionStatus,
			"to", updated.SubscriptionStatus,
		)
		return nil
	})
	return updated, err
}

func organizationClaims(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.OrganizationID == "" {
		return jwt.Claims{}, user.ErrOrganizationIDRequired
	}
	return claims, nil
}

func superAdminClaims(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if !claims.Role.IsSuperAdmin() {
		return jwt.Claims{}, user.ErrSuperAdminRequired
	}
	return claims, nil
}
