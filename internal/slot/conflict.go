package slot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// FindConflicts returns every slot in existing belonging to doctorID on date
// whose interval overlaps [start, end). Pure, no side effects.
func FindConflicts(existing []Slot, doctorID uuid.UUID, date time.Time, start, end TimeOfDay) []Slot {
	var conflicts []Slot
	for _, s := range existing {
		if s.DoctorID != doctorID {
			continue
		}
		if !SameDate(s.SlotDate, date) {
			continue
		}
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}

// ConflictError aborts a whole generation batch when a candidate overlaps an
// existing slot.
type ConflictError struct {
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot for %s from %s to %s overlaps with existing slot(s)",
		e.Date.Format("2006-01-02"), e.Start, e.End)
}
