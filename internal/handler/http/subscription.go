package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// SubscriptionHandler handles subscription-related HTTP requests
type SubscriptionHandler interface {
	// Authenticated endpoints
	GetInfo(w http.ResponseWriter, r *http.Request)
	AcceptAdSupported(w http.ResponseWriter, r *http.Request)

	// Super admin endpoints
	ApproveDonation(w http.ResponseWriter, r *http.Request)
	ListDonations(w http.ResponseWriter, r *http.Request)
	ExtendTrial(w http.ResponseWriter, r *http.Request)
	ApproveAdSupported(w http.ResponseWriter, r *http.Request)
	Suspend(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type subscriptionHandlerImpl struct {
	subscriptionService subscription.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService subscription.SubscriptionService) SubscriptionHandler {
	return &subscriptionHandlerImpl{
		subscriptionService: subscriptionService,
	}
}

// GetInfo returns the evaluated subscription of the caller's organization
// GET /api/v1/subscription
func (h *subscriptionHandlerImpl) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.subscriptionService.GetInfo(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, info)
}

// AcceptAdSupported records the organization's consent to the ad-supported tier
// POST /api/v1/subscription/ad-consent - Admin
func (h *subscriptionHandlerImpl) AcceptAdSupported(w http.ResponseWriter, r *http.Request) {
	info, err := h.subscriptionService.AcceptAdSupported(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Ad-supported tier activated", info)
}

// ApproveDonation applies a donation tier to an organization
// POST /api/v1/admin/organizations/{id}/donations - Super admin
func (h *subscriptionHandlerImpl) ApproveDonation(w http.ResponseWriter, r *http.Request) {
	var req subscription.ApproveDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = chi.URLParam(r, "id")

	org, err := h.subscriptionService.ApproveDonation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Donation approved", org)
}

// ListDonations lists an organization's approved donations
// GET /api/v1/admin/organizations/{id}/donations - Super admin
func (h *subscriptionHandlerImpl) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.subscriptionService.ListDonations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, donations)
}

// ExtendTrial extends a trial by a number of days
// POST /api/v1/admin/organizations/{id}/trial-extensions - Super admin
func (h *subscriptionHandlerImpl) ExtendTrial(w http.ResponseWriter, r *http.Request) {
	var req subscription.ExtendTrialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = chi.URLParam(r, "id")

	org, err := h.subscriptionService.ExtendTrial(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Trial extended", org)
}

// ApproveAdSupported moves an organization to the ad-supported tier
// POST /api/v1/admin/organizations/{id}/ad-supported - Super admin
func (h *subscriptionHandlerImpl) ApproveAdSupported(w http.ResponseWriter, r *http.Request) {
	org, err := h.subscriptionService.ApproveAdSupported(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Ad-supported tier approved", org)
}

// Suspend blocks an organization
// POST /api/v1/admin/organizations/{id}/suspend - Super admin
func (h *subscriptionHandlerImpl) Suspend(w http.ResponseWriter, r *http.Request) {
	var req subscription.SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = chi.URLParam(r, "id")

	org, err := h.subscriptionService.Suspend(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Organization suspended", org)
}

// UpdateStatus sets a subscription status directly
// PUT /api/v1/admin/organizations/{id}/status - Super admin
func (h *subscriptionHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req subscription.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = chi.URLParam(r, "id")

	org, err := h.subscriptionService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription status updated", org)
}
