package api

import (
	"time"

	"github.com/clinicore/doctor-slot-service/internal/slot"
)

// SlotActionRequest is the flat parameter bag accepted by the dispatch
// endpoint. Each action consumes its own subset; the rest is ignored.
type SlotActionRequest struct {
	Action       string `json:"action"`
	DoctorID     string `json:"doctor_id"`
	SlotID       string `json:"slot_id"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD
	EndDate      string `json:"end_date"`   // YYYY-MM-DD
	SlotDuration int    `json:"slot_duration"`
	SlotType     string `json:"slot_type"`
	AccessType   string `json:"access_type"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

type SlotResponse struct {
	ID         string     `json:"id"`
	DoctorID   string     `json:"doctor_id"`
	SlotDate   string     `json:"slot_date"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	SlotType   string     `json:"slot_type,omitempty"`
	AccessType string     `json:"access_type"`
	Status     string     `json:"status"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	Location   string     `json:"location,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

func newSlotResponse(s *slot.Slot) *SlotResponse {
	return &SlotResponse{
		ID:         s.ID.String(),
		DoctorID:   s.DoctorID.String(),
		SlotDate:   s.SlotDate.Format("2006-01-02"),
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		SlotType:   s.SlotType,
		AccessType: string(s.AccessType),
		Status:     string(s.Status),
		LockedAt:   s.LockedAt,
		Location:   s.Location,
		Notes:      s.Notes,
	}
}

// ActionResponse is the success envelope for every action.
type ActionResponse struct {
	Message string        `json:"message"`
	Count   *int          `json:"count,omitempty"`
	Slot    *SlotResponse `json:"slot,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
