package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/validator"
)

// Subscription error codes. Clients show a renewal prompt for the first and
// a contact-support notice for the second.
const (
	CodeSubscriptionExpired   = "SUBSCRIPTION_EXPIRED"
	CodeOrganizationSuspended = "ORGANIZATION_SUSPENDED"
	CodeSubscriptionUnknown   = "SUBSCRIPTION_STATUS_UNKNOWN"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication and roles
	case errors.Is(err, jwt.ErrMissingClaims), errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminAccessRequired), errors.Is(err, user.ErrSuperAdminRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrOrganizationIDRequired):
		Forbidden(w, "No organization associated with this user")

	// Subscription gating
	case errors.Is(err, subscription.ErrSubscriptionExpired):
		ForbiddenWithCode(w, CodeSubscriptionExpired, err.Error())
	case errors.Is(err, subscription.ErrOrganizationSuspended):
		ForbiddenWithCode(w, CodeOrganizationSuspended, err.Error())
	case errors.Is(err, subscription.ErrUnknownSubscriptionStatus):
		ForbiddenWithCode(w, CodeSubscriptionUnknown, err.Error())

	// Subscription domain errors
	case errors.Is(err, subscription.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, subscription.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, subscription.ErrInvalidStatus),
		errors.Is(err, subscription.ErrInvalidDonationTier),
		errors.Is(err, subscription.ErrInvalidExtension),
		errors.Is(err, subscription.ErrInvalidAmount):
		BadRequest(w, err.Error(), nil)

	// Shift domain errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrOverrideNotFound):
		NotFound(w, "Shift override not found")
	case errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, "Shift name already exists")
	case errors.Is(err, shift.ErrInvalidOverrideRange), errors.Is(err, shift.ErrInvalidDateFormat):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrTooEarlyToCheckIn):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
