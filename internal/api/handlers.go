package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/clinicore/doctor-slot-service/internal/redis"
	"github.com/clinicore/doctor-slot-service/internal/slot"
	"github.com/clinicore/doctor-slot-service/internal/telemetry"
)

// Action names accepted by the dispatch endpoint.
const (
	ActionCreateSlots     = "CREATE_SLOTS"
	ActionBlockDate       = "BLOCK_DATE"
	ActionDeleteSlots     = "DELETE_SLOTS"
	ActionBookSlot        = "BOOK_SLOT"
	ActionLockSlot        = "LOCK_SLOT"
	ActionMarkUnavailable = "MARK_UNAVAILABLE"
	ActionRecommendSlot   = "RECOMMEND_SLOT"
	ActionBulkDelete      = "BULK_DELETE"
)

// slotActionHandler is the single request surface: one action value plus a
// flat parameter bag. Field-presence validation happens here, before any
// repository access.
func slotActionHandler(svc *slot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SlotActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.Action == "" {
			writeError(w, http.StatusBadRequest, "missing_action", "Missing action type.")
			return
		}

		var handle func(http.ResponseWriter, *http.Request, *slot.Service, SlotActionRequest)
		switch req.Action {
		case ActionCreateSlots:
			handle = handleCreateSlots
		case ActionBlockDate:
			handle = handleBlockDate
		case ActionDeleteSlots:
			handle = handleDeleteSlots
		case ActionBookSlot:
			handle = handleBookSlot
		case ActionLockSlot:
			handle = handleLockSlot
		case ActionMarkUnavailable:
			handle = handleMarkUnavailable
		case ActionRecommendSlot:
			handle = handleRecommendSlot
		case ActionBulkDelete:
			handle = handleBulkDelete
		default:
			writeError(w, http.StatusBadRequest, "unsupported_action", "Unsupported action.")
			return
		}

		handle(w, r, svc, req)
	}
}

func handleCreateSlots(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	startDate, endDate, ok := requireDateRange(w, req)
	if !ok {
		return
	}
	if req.SlotDuration == 0 {
		writeError(w, http.StatusBadRequest, "missing_field", "slot_duration is required")
		return
	}
	if req.SlotType == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "slot_type is required")
		return
	}

	count, err := svc.CreateSlots(r.Context(), slot.GenerateParams{
		DoctorID:     doctorID,
		StartDate:    startDate,
		EndDate:      endDate,
		SlotDuration: req.SlotDuration,
		SlotType:     req.SlotType,
		AccessType:   slot.AccessType(req.AccessType),
		Location:     req.Location,
		Notes:        req.Notes,
	})
	recordAction(ActionCreateSlots, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Created %d slots.", count),
		Count:   &count,
	})
}

func handleBlockDate(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	startDate, endDate, ok := requireDateRange(w, req)
	if !ok {
		return
	}

	count, err := svc.BlockDateRange(r.Context(), doctorID, startDate, endDate)
	recordAction(ActionBlockDate, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Blocked %d slots between %s and %s.", count, req.StartDate, req.EndDate),
		Count:   &count,
	})
}

func handleDeleteSlots(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	startDate, endDate, ok := requireDateRange(w, req)
	if !ok {
		return
	}

	count, err := svc.DeleteSlots(r.Context(), doctorID, startDate, endDate)
	recordAction(ActionDeleteSlots, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	message := fmt.Sprintf("Deleted %d slots between %s and %s.", count, req.StartDate, req.EndDate)
	if count == 0 {
		message = "No slots found to delete."
	}
	writeJSON(w, http.StatusOK, ActionResponse{Message: message, Count: &count})
}

func handleBookSlot(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	slotID, ok := requireUUID(w, req.SlotID, "slot_id")
	if !ok {
		return
	}
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}

	booked, err := svc.BookSlot(r.Context(), slotID, doctorID)
	recordAction(ActionBookSlot, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Slot %s has been booked.", booked.ID),
		Slot:    newSlotResponse(booked),
	})
}

func handleLockSlot(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	slotID, ok := requireUUID(w, req.SlotID, "slot_id")
	if !ok {
		return
	}
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}

	locked, err := svc.LockSlot(r.Context(), slotID, doctorID)
	recordAction(ActionLockSlot, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Slot %s is now locked (PENDING) for booking.", locked.ID),
		Slot:    newSlotResponse(locked),
	})
}

func handleMarkUnavailable(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	startDate, endDate, ok := requireDateRange(w, req)
	if !ok {
		return
	}

	count, err := svc.MarkUnavailable(r.Context(), doctorID, startDate, endDate)
	recordAction(ActionMarkUnavailable, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	message := fmt.Sprintf("Marked %d slots as UNAVAILABLE (BLOCKED).", count)
	if count == 0 {
		message = "No slots were marked as unavailable."
	}
	writeJSON(w, http.StatusOK, ActionResponse{Message: message, Count: &count})
}

func handleRecommendSlot(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	preferred, ok := requireDate(w, req.StartDate, "start_date")
	if !ok {
		return
	}

	recommended, err := svc.RecommendSlot(r.Context(), doctorID, preferred)
	recordAction(ActionRecommendSlot, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	if recommended == nil {
		writeJSON(w, http.StatusOK, ActionResponse{
			Message: "No available slots found for this doctor on given date.",
		})
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Recommended slot: %s | %s to %s at %s.",
			recommended.SlotDate.Format("2006-01-02"), recommended.StartTime, recommended.EndTime, recommended.Location),
		Slot: newSlotResponse(recommended),
	})
}

func handleBulkDelete(w http.ResponseWriter, r *http.Request, svc *slot.Service, req SlotActionRequest) {
	doctorID, ok := requireUUID(w, req.DoctorID, "doctor_id")
	if !ok {
		return
	}
	startDate, endDate, ok := requireDateRange(w, req)
	if !ok {
		return
	}

	count, err := svc.BulkDelete(r.Context(), doctorID, startDate, endDate)
	recordAction(ActionBulkDelete, err)
	if err != nil {
		handleActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{
		Message: fmt.Sprintf("Deleted %d slots for doctor %s between %s and %s.",
			count, req.DoctorID, req.StartDate, req.EndDate),
		Count: &count,
	})
}

// Field parsing helpers. A false return means the rejection is already
// written.

func requireUUID(w http.ResponseWriter, raw, field string) (uuid.UUID, bool) {
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_field", field+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_field", field+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func requireDate(w http.ResponseWriter, raw, field string) (time.Time, bool) {
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_field", field+" is required")
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_field", field+" must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func requireDateRange(w http.ResponseWriter, req SlotActionRequest) (time.Time, time.Time, bool) {
	startDate, ok := requireDate(w, req.StartDate, "start_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endDate, ok := requireDate(w, req.EndDate, "end_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}

func recordAction(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	telemetry.SlotActionsTotal.WithLabelValues(action, outcome).Inc()
}

func handleActionError(w http.ResponseWriter, err error) {
	var conflict *slot.ConflictError
	switch {
	case errors.Is(err, slot.ErrInvalidDateRange),
		errors.Is(err, slot.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, slot.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, slot.ErrDoctorMismatch):
		writeError(w, http.StatusNotFound, "doctor_mismatch", err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, slot.ErrSlotNotAvailable):
		writeError(w, http.StatusConflict, "slot_not_available", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "schedule_busy", "doctor schedule is busy, please retry shortly")
	case errors.Is(err, slot.ErrReservedAccessType):
		writeError(w, http.StatusUnprocessableEntity, "reserved_access_type", err.Error())
	case errors.Is(err, slot.ErrDailyCapReached):
		writeError(w, http.StatusUnprocessableEntity, "daily_cap_reached", err.Error())
	case errors.Is(err, slot.ErrBookingGapTooSmall):
		writeError(w, http.StatusUnprocessableEntity, "booking_gap_violation", err.Error())
	case errors.Is(err, slot.ErrAdvanceWindowOver):
		writeError(w, http.StatusUnprocessableEntity, "advance_window_exceeded", err.Error())
	case errors.Is(err, slot.ErrSameDayCutoff):
		writeError(w, http.StatusUnprocessableEntity, "same_day_cutoff", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
