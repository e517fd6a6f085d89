package subscription

import (
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// ApproveDonationRequest approves a donation for an organization.
type ApproveDonationRequest struct {
	OrganizationID string          `json:"-"`
	Tier           string          `json:"tier"`
	Amount         decimal.Decimal `json:"amount"`
	Note           *string         `json:"note,omitempty"`
}

func (r *ApproveDonationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs.Add("organization_id", "organization_id is required")
	}
	if ParseDonationTier(r.Tier) == TierUnknown {
		errs.Add("tier", ErrInvalidDonationTier.Error())
	}
	if !r.Amount.IsPositive() {
		errs.Add("amount", ErrInvalidAmount.Error())
	}

	return errs.OrNil()
}

// ExtendTrialRequest approves a trial extension.
type ExtendTrialRequest struct {
	OrganizationID string `json:"-"`
	Days           int    `json:"days"`
}

func (r *ExtendTrialRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs.Add("organization_id", "organization_id is required")
	}
	if r.Days <= 0 {
		errs.Add("days", ErrInvalidExtension.Error())
	} else if r.Days > 365 {
		errs.Add("days", "days must not exceed 365")
	}

	return errs.OrNil()
}

type SuspendRequest struct {
	OrganizationID string `json:"-"`
	Reason         string `json:"reason"`
}

func (r *SuspendRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs.Add("organization_id", "organization_id is required")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	return errs.OrNil()
}

// UpdateStatusRequest is the unrestricted administrative status edit.
type UpdateStatusRequest struct {
	OrganizationID string  `json:"-"`
	Status         string  `json:"status"`
	TrialEndDate   *string `json:"trial_end_date,omitempty"` // RFC3339, TRIAL only
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs.Add("organization_id", "organization_id is required")
	}
	status := ParseStatus(r.Status)
	if status == StatusUnknown {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	if r.TrialEndDate != nil {
		if status != StatusTrial {
			errs.Add("trial_end_date", "trial_end_date is only allowed with status TRIAL")
		} else if _, err := time.Parse(time.RFC3339, *r.TrialEndDate); err != nil {
			errs.Add("trial_end_date", "trial_end_date must be an RFC3339 timestamp")
		}
	}

	return errs.OrNil()
}

// ParsedTrialEndDate returns the trial end, if one was given. Call after
// Validate.
func (r *UpdateStatusRequest) ParsedTrialEndDate() *time.Time {
	if r.TrialEndDate == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *r.TrialEndDate)
	if err != nil {
		return nil
	}
	return &t
}

// ==================== Response DTOs ====================

// InfoResponse is what clients use to render banners and disable writes.
type InfoResponse struct {
	OrganizationID string  `json:"organization_id"`
	Status         Status  `json:"status"`
	DaysRemaining  *int    `json:"days_remaining"`
	TrialEndDate   *string `json:"trial_end_date,omitempty"`
	IsReadOnly     bool    `json:"is_read_only"`
	IsBlocked      bool    `json:"is_blocked"`
	ShowAds        bool    `json:"show_ads"`
	IsSuperAdmin   bool    `json:"is_super_admin"`
	CanWrite       bool    `json:"can_write"`
}

func NewInfoResponse(organizationID string, info Info) InfoResponse {
	return InfoResponse{
		OrganizationID: organizationID,
		Status:         info.Status,
		DaysRemaining:  info.DaysRemaining,
		TrialEndDate:   formatTime(info.TrialEndDate),
		IsReadOnly:     info.IsReadOnly,
		IsBlocked:      info.IsBlocked,
		ShowAds:        info.ShowAds,
		IsSuperAdmin:   info.IsSuperAdmin,
		CanWrite:       CanWrite(info),
	}
}

type OrganizationResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Status              Status  `json:"status"`
	TrialEndDate        *string `json:"trial_end_date,omitempty"`
	SubscriptionEndDate *string `json:"subscription_end_date,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

func NewOrganizationResponse(org Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:                  org.ID,
		Name:                org.Name,
		Status:              org.SubscriptionStatus,
		TrialEndDate:        formatTime(org.TrialEndDate),
		SubscriptionEndDate: formatTime(org.SubscriptionEndDate),
	}
	if !org.UpdatedAt.IsZero() {
		resp.UpdatedAt = org.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

type DonationResponse struct {
	ID         string          `json:"id"`
	Tier       DonationTier    `json:"tier"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedBy string          `json:"approved_by"`
	ApprovedAt string          `json:"approved_at"`
	Note       *string         `json:"note,omitempty"`
}

func NewDonationResponse(d Donation) DonationResponse {
	return DonationResponse{
		ID:         d.ID,
		Tier:       d.Tier,
		Amount:     d.Amount,
		ApprovedBy: d.ApprovedBy,
		ApprovedAt: d.ApprovedAt.UTC().Format(time.RFC3339),
		Note:       d.Note,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
