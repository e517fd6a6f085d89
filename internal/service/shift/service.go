package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

type ShiftServiceImpl struct {
	shiftRepo      shift.ShiftRepository
	overrideRepo   shift.OverrideRepository
	assignmentRepo shift.AssignmentRepository
	guard          subscription.WriteGuard
	tx             database.Transactor
	catalogs       *cache.TTL[shift.Catalog]
}

// NewShiftService builds the service. Catalogs are cached per organization
// for cacheTTL and invalidated on every catalog write; zero disables caching.
func NewShiftService(
	shiftRepo shift.ShiftRepository,
	overrideRepo shift.OverrideRepository,
	assignmentRepo shift.AssignmentRepository,
	guard subscription.WriteGuard,
	tx database.Transactor,
	cacheTTL time.Duration,
) *ShiftServiceImpl {
	s := &ShiftServiceImpl{
		shiftRepo:      shiftRepo,
		overrideRepo:   overrideRepo,
		assignmentRepo: assignmentRepo,
		guard:          guard,
		tx:             tx,
	}
	s.catalogs = cache.NewTTL(cacheTTL, s.loadCatalog)
	return s
}

var (
	_ shift.ShiftService    = (*ShiftServiceImpl)(nil)
	_ shift.CatalogProvider = (*ShiftServiceImpl)(nil)
)

// LoadCatalog implements shift.CatalogProvider.
func (s *ShiftServiceImpl) LoadCatalog(ctx context.Context, organizationID string) (shift.Catalog, error) {
	return s.catalogs.Get(ctx, organizationID)
}

func (s *ShiftServiceImpl) loadCatalog(ctx context.Context, organizationID string) (shift.Catalog, error) {
	shifts, err := s.shiftRepo.List(ctx, organizationID)
	if err != nil {
		return shift.Catalog{}, fmt.Errorf("list shifts: %w", err)
	}
	overrides, err := s.overrideRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return shift.Catalog{}, fmt.Errorf("list overrides: %w", err)
	}
	return shift.Catalog{Shifts: shifts, Overrides: overrides}, nil
}

// ListShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListShifts(ctx context.Context) ([]shift.ShiftResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := s.LoadCatalog(ctx, claims.OrganizationID)
	if err != nil {
		return nil, err
	}

	resp := make([]shift.ShiftResponse, 0, len(catalog.Shifts))
	for _, sh := range catalog.Shifts {
		resp = append(resp, shift.NewShiftResponse(sh))
	}
	return resp, nil
}

// GetShift implements shift.ShiftService.
func (s *ShiftServiceImpl) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	sh, err := s.shiftRepo.GetByID(ctx, id, claims.OrganizationID)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("get shift: %w", err)
	}
	return shift.NewShiftResponse(sh), nil
}

// CreateShift implements shift.ShiftService. The first shift of an
// organization becomes its default.
func (s *ShiftServiceImpl) CreateShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("generate shift id: %w", err)
	}
	newShift := req.ToShift(claims.OrganizationID)
	newShift.ID = id.String()

	var created shift.Shift
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.shiftRepo.List(ctx, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("list shifts: %w", err)
		}
		if len(existing) == 0 {
			newShift.IsDefault = true
		}
		if newShift.IsDefault {
			if err := s.shiftRepo.ClearDefaults(ctx, claims.OrganizationID); err != nil {
				return fmt.Errorf("clear default shifts: %w", err)
			}
		}

		created, err = s.shiftRepo.Create(ctx, newShift)
		if err != nil {
			return fmt.Errorf("create shift: %w", err)
		}
		return nil
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	slog.Info("shift created", "organization_id", claims.OrganizationID, "shift_id", created.ID, "is_default", created.IsDefault)
	return shift.NewShiftResponse(created), nil
}

// UpdateShift implements shift.ShiftService.
func (s *ShiftServiceImpl) UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	current, err := s.shiftRepo.GetByID(ctx, req.ID, claims.OrganizationID)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("get shift: %w", err)
	}
	req.Apply(&current)

	updated, err := s.shiftRepo.Update(ctx, current)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("update shift: %w", err)
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	return shift.NewShiftResponse(updated), nil
}

// DeleteShift implements shift.ShiftService. Employees assigned to the shift
// fall back to the default, and deleting the default promotes the oldest
// remaining shift.
func (s *ShiftServiceImpl) DeleteShift(ctx context.Context, id string) error {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return err
	}

	var promoted string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := s.shiftRepo.GetByID(ctx, id, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("get shift: %w", err)
		}
		if err := s.assignmentRepo.ClearShift(ctx, id, claims.OrganizationID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if err := s.shiftRepo.Delete(ctx, id, claims.OrganizationID); err != nil {
			return fmt.Errorf("delete shift: %w", err)
		}
		if !target.IsDefault {
			return nil
		}

		remaining, err := s.shiftRepo.List(ctx, claims.OrganizationID)
		if err != nil {
			return fmt.Errorf("list shifts: %w", err)
		}
		if len(remaining) == 0 {
			return nil
		}
		promoted = remaining[0].ID
		return s.designateDefault(ctx, promoted, claims.OrganizationID)
	})
	if err != nil {
		return err
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	slog.Info("shift deleted", "organization_id", claims.OrganizationID, "shift_id", id, "promoted_default", promoted)
	return nil
}

// SetDefaultShift implements shift.ShiftService.
func (s *ShiftServiceImpl) SetDefaultShift(ctx context.Context, id string) error {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.shiftRepo.GetByID(ctx, id, claims.OrganizationID); err != nil {
			return fmt.Errorf("get shift: %w", err)
		}
		return s.designateDefault(ctx, id, claims.OrganizationID)
	})
	if err != nil {
		return err
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	return nil
}

// EnsureDefault implements shift.ShiftService.
func (s *ShiftServiceImpl) EnsureDefault(ctx context.Context) (*shift.ShiftResponse, error) {
	claims, err := adminClaims(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := s.shiftRepo.List(ctx, claims.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	if len(shifts) == 0 {
		return nil, nil
	}

	resolver := shift.NewResolver(shift.Catalog{Shifts: shifts})
	if def, ok := resolver.Default(); ok {
		resp := shift.NewShiftResponse(def)
		return &resp, nil
	}

	if err := s.guard.EnsureWritable(ctx, claims.OrganizationID); err != nil {
		return nil, err
	}
	first := shifts[0]
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.designateDefault(ctx, first.ID, claims.OrganizationID)
	}); err != nil {
		return nil, err
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	slog.Warn("promoted default shift", "organization_id", claims.OrganizationID, "shift_id", first.ID)

	first.IsDefault = true
	resp := shift.NewShiftResponse(first)
	return &resp, nil
}

// designateDefault clears every default then marks id.
func (s *ShiftServiceImpl) designateDefault(ctx context.Context, id, organizationID string) error {
	if err := s.shiftRepo.ClearDefaults(ctx, organizationID); err != nil {
		return fmt.Errorf("clear default shifts: %w", err)
	}
	if err := s.shiftRepo.MarkDefault(ctx, id, organizationID); err != nil {
		return fmt.Errorf("mark default shift: %w", err)
	}
	return nil
}

// ListOverrides implements shift.ShiftService.
func (s *ShiftServiceImpl) ListOverrides(ctx context.Context, filter shift.OverrideFilter) ([]shift.OverrideResponse, error) {
	claims, err := adminClaims(ctx)
	if err != nil {
		return nil, err
	}

	var overrides []shift.ShiftOverride
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		overrides, err = s.overrideRepo.ListByEmployee(ctx, *filter.EmployeeID, claims.OrganizationID)
	} else {
		overrides, err = s.overrideRepo.ListByOrganization(ctx, claims.OrganizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}

	resp := make([]shift.OverrideResponse, 0, len(overrides))
	for _, o := range overrides {
		resp = append(resp, shift.NewOverrideResponse(o))
	}
	return resp, nil
}

// CreateOverride implements shift.ShiftService.
func (s *ShiftServiceImpl) CreateOverride(ctx context.Context, req shift.CreateOverrideRequest) (shift.OverrideResponse, error) {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return shift.OverrideResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.OverrideResponse{}, err
	}

	if _, err := s.shiftRepo.GetByID(ctx, req.ShiftID, claims.OrganizationID); err != nil {
		return shift.OverrideResponse{}, fmt.Errorf("get shift: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.OverrideResponse{}, fmt.Errorf("generate override id: %w", err)
	}
	created, err := s.overrideRepo.Create(ctx, shift.ShiftOverride{
		ID:             id.String(),
		OrganizationID: claims.OrganizationID,
		EmployeeID:     req.EmployeeID,
		ShiftID:        req.ShiftID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Reason:         req.Reason,
	})
	if err != nil {
		return shift.OverrideResponse{}, fmt.Errorf("create override: %w", err)
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	return shift.NewOverrideResponse(created), nil
}

// DeleteOverride implements shift.ShiftService.
func (s *ShiftServiceImpl) DeleteOverride(ctx context.Context, id string) error {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return err
	}

	if err := s.overrideRepo.Delete(ctx, id, claims.OrganizationID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}

	s.catalogs.Invalidate(claims.OrganizationID)
	return nil
}

// AssignShift implements shift.ShiftService.
func (s *ShiftServiceImpl) AssignShift(ctx context.Context, req shift.AssignShiftRequest) error {
	claims, err := s.writableAdmin(ctx)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if req.ShiftID != nil {
		if _, err := s.shiftRepo.GetByID(ctx, *req.ShiftID, claims.OrganizationID); err != nil {
			return fmt.Errorf("get shift: %w", err)
		}
	}

	if err := s.assignmentRepo.SetAssignedShiftID(ctx, req.EmployeeID, claims.OrganizationID, req.ShiftID); err != nil {
		return fmt.Errorf("assign shift: %w", err)
	}
	return nil
}

// ResolveShift implements shift.ShiftService. Employees may only resolve
// their own shift. An unresolvable shift is not an error: the response
// carries SourceNone and no shift.
func (s *ShiftServiceImpl) ResolveShift(ctx context.Context, req shift.ResolveShiftRequest) (shift.ResolvedShiftResponse, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return shift.ResolvedShiftResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.ResolvedShiftResponse{}, err
	}
	if !claims.Role.CanManageOrganization() && req.EmployeeID != claims.EmployeeID {
		return shift.ResolvedShiftResponse{}, user.ErrAdminAccessRequired
	}

	catalog, err := s.LoadCatalog(ctx, claims.OrganizationID)
	if err != nil {
		return shift.ResolvedShiftResponse{}, err
	}
	assigned, err := s.assignmentRepo.GetAssignedShiftID(ctx, req.EmployeeID, claims.OrganizationID)
	if err != nil {
		return shift.ResolvedShiftResponse{}, fmt.Errorf("get assigned shift: %w", err)
	}

	resp := shift.ResolvedShiftResponse{EmployeeID: req.EmployeeID, Date: req.Date}
	sh, source := shift.NewResolver(catalog).ResolveWithSource(req.EmployeeID, assigned, req.Date)
	resp.Source = source
	if source != shift.SourceNone {
		sr := shift.NewShiftResponse(sh)
		resp.Shift = &sr
	}
	return resp, nil
}

func (s *ShiftServiceImpl) writableAdmin(ctx context.Context) (jwt.Claims, error) {
	claims, err := adminClaims(ctx)
	if err != nil {
		return jwt.Claims{}, err
	}
	if err := s.guard.EnsureWritable(ctx, claims.OrganizationID); err != nil {
		return jwt.Claims{}, err
	}
	return claims, nil
}

func memberClaims(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.OrganizationID == "" {
		return jwt.Claims{}, user.ErrOrganizationIDRequired
	}
	return claims, nil
}

func adminClaims(ctx context.Context) (jwt.Claims, error) {
	claims, err := memberClaims(ctx)
	if err != nil {
		return jwt.Claims{}, err
	}
	if !claims.Role.CanManageOrganization() {
		return jwt.Claims{}, user.ErrAdminAccessRequired
	}
	return claims, nil
}
