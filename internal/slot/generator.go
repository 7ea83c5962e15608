package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Daily working window for generated slots.
const (
	WorkingDayStart = TimeOfDay(9 * 60)  // 09:00
	WorkingDayEnd   = TimeOfDay(13 * 60) // 13:00
)

var (
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidDuration  = errors.New("slot duration must be positive")
)

type GenerateParams struct {
	DoctorID     uuid.UUID
	StartDate    time.Time
	EndDate      time.Time
	SlotDuration int // minutes
	SlotType     string
	AccessType   AccessType
	Location     string
	Notes        string
}

func (p GenerateParams) validate() error {
	if p.SlotDuration <= 0 {
		return ErrInvalidDuration
	}
	if DateOf(p.StartDate).After(DateOf(p.EndDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

// buildCandidates walks every date in the inclusive range and emits one
// candidate per duration stride inside the working window. A stride whose end
// would land past the window close is dropped, so a duration that does not
// evenly divide the window yields a shorter batch rather than an error.
func buildCandidates(p GenerateParams) []Slot {
	access := p.AccessType
	if access == "" {
		access = AccessNormal
	}

	dur := TimeOfDay(p.SlotDuration)
	var candidates []Slot
	for date := DateOf(p.StartDate); !date.After(DateOf(p.EndDate)); date = date.AddDate(0, 0, 1) {
		for start := WorkingDayStart; start+dur <= WorkingDayEnd; start += dur {
			candidates = append(candidates, Slot{
				ID:         uuid.New(),
				DoctorID:   p.DoctorID,
				SlotDate:   date,
				StartTime:  start,
				EndTime:    start + dur,
				SlotType:   p.SlotType,
				AccessType: access,
				Status:     StatusAvailable,
				Location:   p.Location,
				Notes:      p.Notes,
			})
		}
	}
	return candidates
}
