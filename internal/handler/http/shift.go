package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	// Shift catalog
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SetDefault(w http.ResponseWriter, r *http.Request)
	EnsureDefault(w http.ResponseWriter, r *http.Request)

	// Overrides
	ListOverrides(w http.ResponseWriter, r *http.Request)
	CreateOverride(w http.ResponseWriter, r *http.Request)
	DeleteOverride(w http.ResponseWriter, r *http.Request)

	// Employee assignment
	Assign(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
	}
}

// List implements ShiftHandler.
func (h *shiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.shiftService.ListShifts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, shifts)
}

// Get implements ShiftHandler.
func (h *shiftHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.shiftService.GetShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, s)
}

// Create implements ShiftHandler.
func (h *shiftHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.shiftService.CreateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created successfully", created)
}

// Update implements ShiftHandler.
func (h *shiftHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req shift.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.shiftService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated successfully", updated)
}

// Delete implements ShiftHandler.
func (h *shiftHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

// SetDefault implements ShiftHandler.
func (h *shiftHandlerImpl) SetDefault(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.SetDefaultShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Default shift updated", nil)
}

// EnsureDefault returns the default shift, promoting the oldest shift when
// the catalog has none. Data is null for an empty catalog.
func (h *shiftHandlerImpl) EnsureDefault(w http.ResponseWriter, r *http.Request) {
	def, err := h.shiftService.EnsureDefault(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, def)
}

// ListOverrides implements ShiftHandler.
func (h *shiftHandlerImpl) ListOverrides(w http.ResponseWriter, r *http.Request) {
	var filter shift.OverrideFilter
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	overrides, err := h.shiftService.ListOverrides(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, overrides)
}

// CreateOverride implements ShiftHandler.
func (h *shiftHandlerImpl) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.shiftService.CreateOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift override created successfully", created)
}

// DeleteOverride implements ShiftHandler.
func (h *shiftHandlerImpl) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.DeleteOverride(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift override deleted successfully", nil)
}

// Assign implements ShiftHandler.
func (h *shiftHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req shift.AssignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	if err := h.shiftService.AssignShift(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assigned successfully", nil)
}

// Resolve implements ShiftHandler.
func (h *shiftHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	req := shift.ResolveShiftRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Date:       r.URL.Query().Get("date"),
	}

	resolved, err := h.shiftService.ResolveShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resolved)
}
