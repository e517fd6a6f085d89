package shift

import "context"

type ShiftService interface {
	// Shift catalog
	ListShifts(ctx context.Context) ([]ShiftResponse, error)
	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error
	SetDefaultShift(ctx context.Context, id string) error

	// EnsureDefault promotes the first shift to default when a non-empty
	// catalog has none. It returns the default, if any.
	EnsureDefault(ctx context.Context) (*ShiftResponse, error)

	// Overrides
	ListOverrides(ctx context.Context, filter OverrideFilter) ([]OverrideResponse, error)
	CreateOverride(ctx context.Context, req CreateOverrideRequest) (OverrideResponse, error)
	DeleteOverride(ctx context.Context, id string) error

	// Assignment
	AssignShift(ctx context.Context, req AssignShiftRequest) error
	ResolveShift(ctx context.Context, req ResolveShiftRequest) (ResolvedShiftResponse, error)
}

// CatalogProvider hands out an organization's shifts and overrides, possibly
// from cache.
type CatalogProvider interface {
	LoadCatalog(ctx context.Context, organizationID string) (Catalog, error)
}
