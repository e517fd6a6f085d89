package shift

// Source tells which tier of the resolution order produced a shift.
type Source string

const (
	SourceOverride   Source = "override"
	SourceAssignment Source = "assignment"
	SourceDefault    Source = "default"
	SourceNone       Source = "none"
)

// Resolver picks the effective shift for an employee on a date. It is
// immutable after construction and safe for concurrent use.
//
// Overrides are scanned in the order given and the first covering override
// decides, with no recency or specificity tie-break. When its shift no longer
// exists resolution falls through to the assignment.
// Catalogs with zero or several defaults are tolerated: the first default in
// catalog order is used.
type Resolver struct {
	shifts    []Shift
	overrides []ShiftOverride
	byID      map[string]int
}

func NewResolver(catalog Catalog) *Resolver {
	byID := make(map[string]int, len(catalog.Shifts))
	for i, s := range catalog.Shifts {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = i
		}
	}
	return &Resolver{
		shifts:    catalog.Shifts,
		overrides: catalog.Overrides,
		byID:      byID,
	}
}

// Resolve returns the governing shift, or false when nothing applies.
func (r *Resolver) Resolve(employeeID string, assignedShiftID *string, date string) (Shift, bool) {
	s, src := r.ResolveWithSource(employeeID, assignedShiftID, date)
	return s, src != SourceNone
}

func (r *Resolver) ResolveWithSource(employeeID string, assignedShiftID *string, date string) (Shift, Source) {
	if r == nil {
		return Shift{}, SourceNone
	}

	for _, o := range r.overrides {
		if !o.Covers(employeeID, date) {
			continue
		}
		// Only the first covering override is considered.
		if s, ok := r.lookup(o.ShiftID); ok {
			return s, SourceOverride
		}
		break
	}

	if assignedShiftID != nil && *assignedShiftID != "" {
		if s, ok := r.lookup(*assignedShiftID); ok {
			return s, SourceAssignment
		}
	}

	if s, ok := r.Default(); ok {
		return s, SourceDefault
	}
	return Shift{}, SourceNone
}

// Default returns the first shift flagged as default, in catalog order.
func (r *Resolver) Default() (Shift, bool) {
	if r == nil {
		return Shift{}, false
	}
	for _, s := range r.shifts {
		if s.IsDefault {
			return s, true
		}
	}
	return Shift{}, false
}

func (r *Resolver) lookup(id string) (Shift, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Shift{}, false
	}
	return r.shifts[i], true
}
