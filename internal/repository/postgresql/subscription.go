package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const organizationColumns = `id, name, subscription_status, trial_end_date, subscription_end_date, updated_at`

type organizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) subscription.OrganizationRepository {
	return &organizationRepository{db: db}
}

func scanOrganization(row pgx.Row) (subscription.Organization, error) {
	var (
		org    subscription.Organization
		status string
	)
	err := row.Scan(&org.ID, &org.Name, &status, &org.TrialEndDate, &org.SubscriptionEndDate, &org.UpdatedAt)
	if err != nil {
		return subscription.Organization{}, err
	}
	// Legacy or unrecognized values become UNKNOWN rather than failing the read.
	org.SubscriptionStatus = subscription.ParseStatus(status)
	return org, nil
}

// GetByID implements subscription.OrganizationRepository.
func (r *organizationRepository) GetByID(ctx context.Context, id string) (subscription.Organization, error) {
	return r.getByID(ctx, id, ``)
}

// GetByIDForUpdate implements subscription.OrganizationRepository.
func (r *organizationRepository) GetByIDForUpdate(ctx context.Context, id string) (subscription.Organization, error) {
	return r.getByID(ctx, id, ` FOR UPDATE`)
}

func (r *organizationRepository) getByID(ctx context.Context, id, lock string) (subscription.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1` + lock

	org, err := scanOrganization(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Organization{}, subscription.ErrOrganizationNotFound
		}
		return subscription.Organization{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// UpdateSubscription implements subscription.OrganizationRepository.
func (r *organizationRepository) UpdateSubscription(ctx context.Context, org subscription.Organization) (subscription.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE organizations SET
			subscription_status = $2,
			trial_end_date = $3,
			subscription_end_date = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + organizationColumns

	updated, err := scanOrganization(q.QueryRow(ctx, query,
		org.ID, string(org.SubscriptionStatus), org.TrialEndDate, org.SubscriptionEndDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Organization{}, subscription.ErrOrganizationNotFound
		}
		return subscription.Organization{}, fmt.Errorf("failed to update organization subscription: %w", err)
	}
	return updated, nil
}

// ListLapseCandidates implements subscription.OrganizationRepository. The
// trial comparison is coarse; callers apply IsLapsed for the calendar-day
// rule.
func (r *organizationRepository) ListLapseCandidates(ctx context.Context, now time.Time) ([]subscription.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + organizationColumns + `
		FROM organizations
		WHERE (subscription_status = $1 AND trial_end_date < $3)
		   OR (subscription_status = $2 AND subscription_end_date < $3)
		ORDER BY id`

	rows, err := q.Query(ctx, query, string(subscription.StatusTrial), string(subscription.StatusActive), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list lapse candidates: %w", err)
	}
	defer rows.Close()

	var orgs []subscription.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}

type donationRepository struct {
	db *database.DB
}

func NewDonationRepository(db *database.DB) subscription.DonationRepository {
	return &donationRepository{db: db}
}

// Create implements subscription.DonationRepository.
func (r *donationRepository) Create(ctx context.Context, d subscription.Donation) (subscription.Donation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO donations (id, organization_id, tier, amount, approved_by, approved_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.Exec(ctx, query, d.ID, d.OrganizationID, string(d.Tier), d.Amount, d.ApprovedBy, d.ApprovedAt, d.Note)
	if err != nil {
		return subscription.Donation{}, fmt.Errorf("failed to create donation: %w", err)
	}
	return d, nil
}

// ListByOrganization implements subscription.DonationRepository.
func (r *donationRepository) ListByOrganization(ctx context.Context, organizationID string) ([]subscription.Donation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, tier, amount, approved_by, approved_at, note
		FROM donations
		WHERE organization_id = $1
		ORDER BY approved_at DESC, id`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	donations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.Donation, error) {
		var (
			d    subscription.Donation
			tier string
		)
		err := row.Scan(&d.ID, &d.OrganizationID, &tier, &d.Amount, &d.ApprovedBy, &d.ApprovedAt, &d.Note)
		d.Tier = subscription.ParseDonationTier(tier)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan donations: %w", err)
	}
	return donations, nil
}
