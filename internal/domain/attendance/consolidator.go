package attendance

import "strings"

// StatusStrategy decides the status of a consolidated record.
type StatusStrategy string

const (
	// StatusFirstSeen keeps the status of the first record visited for a
	// day. Merged punch times do not change it.
	StatusFirstSeen StatusStrategy = "first_seen"
	// StatusWorstCase lets a LATE punch override a PRESENT one.
	StatusWorstCase StatusStrategy = "worst_case"
)

const remarkSeparator = " | "

// Consolidator folds raw punches into one record per employee and date.
type Consolidator struct {
	strategy StatusStrategy
}

func NewConsolidator(strategy StatusStrategy) *Consolidator {
	if strategy != StatusWorstCase {
		strategy = StatusFirstSeen
	}
	return &Consolidator{strategy: strategy}
}

// Consolidate uses the first-seen status strategy.
func Consolidate(records []Attendance) []Attendance {
	return NewConsolidator(StatusFirstSeen).Consolidate(records)
}

type dayKey struct {
	employeeID string
	date       string
}

// Consolidate returns one record per (employee, date) in order of first
// appearance. The earliest check-in and the latest check-out win, remarks
// are joined without repeats, and the id is that of the last record visited.
// Records without an employee or date cannot be grouped; each is kept as its
// own row, unmerged, at the position it was visited.
func (c *Consolidator) Consolidate(records []Attendance) []Attendance {
	index := make(map[dayKey]int, len(records))
	out := make([]Attendance, 0, len(records))

	for _, r := range records {
		if r.EmployeeID == "" || r.Date == "" {
			out = append(out, r)
			continue
		}
		key := dayKey{employeeID: r.EmployeeID, date: r.Date}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		c.fold(&out[i], r)
	}
	return out
}

func (c *Consolidator) fold(acc *Attendance, r Attendance) {
	if hasTime(r.CheckIn) && (!hasTime(acc.CheckIn) || r.CheckIn < acc.CheckIn) {
		acc.CheckIn = r.CheckIn
	}
	if hasTime(r.CheckOut) && (!hasTime(acc.CheckOut) || r.CheckOut > acc.CheckOut) {
		acc.CheckOut = r.CheckOut
	}

	if r.Remarks != "" && !strings.Contains(acc.Remarks, r.Remarks) {
		if acc.Remarks == "" {
			acc.Remarks = r.Remarks
		} else {
			acc.Remarks += remarkSeparator + r.Remarks
		}
	}

	acc.ID = r.ID

	if c.strategy == StatusWorstCase && acc.Status == StatusPresent && r.Status == StatusLate {
		acc.Status = StatusLate
	}
}
