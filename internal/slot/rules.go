package slot

import (
	"errors"
	"time"
)

// Booking rule thresholds.
const (
	MaxDailyBookings      = 10
	MinBookingGapMinutes  = 15
	MaxAdvanceBookingDays = 7
)

// SameDayCutoff is the time of day after which same-day bookings close.
var SameDayCutoff = NewTimeOfDay(17, 0)

var (
	ErrSlotNotAvailable   = errors.New("slot is not available")
	ErrReservedAccessType = errors.New("slot is reserved for walk-ins or emergencies only")
	ErrDailyCapReached    = errors.New("doctor already has the maximum number of bookings for this date")
	ErrBookingGapTooSmall = errors.New("less than the minimum gap from another booking")
	ErrAdvanceWindowOver  = errors.New("slots can only be booked up to 7 days in advance")
	ErrSameDayCutoff      = errors.New("same-day bookings must be made before 5:00 PM")
)

// bookingContext carries everything a booking rule may inspect: the candidate
// slot, all of the doctor's slots on the candidate's date, and the current time.
type bookingContext struct {
	slot    *Slot
	sameDay []Slot
	now     time.Time
}

type bookingRule func(bookingContext) error

// bookingRules is the ordered predicate chain applied to every booking
// request. The first failing rule determines the rejection; reasons are never
// merged. Existence and ownership are checked before the chain runs.
var bookingRules = []bookingRule{
	ruleSlotAvailable,
	ruleAccessType,
	ruleDailyCap,
	ruleMinimumGap,
	ruleAdvanceWindow,
	ruleSameDayCutoff,
}

func validateBooking(bc bookingContext) error {
	for _, rule := range bookingRules {
		if err := rule(bc); err != nil {
			return err
		}
	}
	return nil
}

func ruleSlotAvailable(bc bookingContext) error {
	if bc.slot.Status != StatusAvailable {
		return ErrSlotNotAvailable
	}
	return nil
}

func ruleAccessType(bc bookingContext) error {
	if bc.slot.AccessType == AccessWalkIn || bc.slot.AccessType == AccessEmergency {
		return ErrReservedAccessType
	}
	return nil
}

func ruleDailyCap(bc bookingContext) error {
	booked := 0
	for _, s := range bc.sameDay {
		if s.Status == StatusBooked {
			booked++
		}
	}
	if booked >= MaxDailyBookings {
		return ErrDailyCapReached
	}
	return nil
}

func ruleMinimumGap(bc bookingContext) error {
	for _, s := range bc.sameDay {
		if s.ID == bc.slot.ID || s.Status != StatusBooked {
			continue
		}
		gap := int(s.StartTime) - int(bc.slot.StartTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < MinBookingGapMinutes {
			return ErrBookingGapTooSmall
		}
	}
	return nil
}

func ruleAdvanceWindow(bc bookingContext) error {
	latest := DateOf(bc.now).AddDate(0, 0, MaxAdvanceBookingDays)
	if DateOf(bc.slot.SlotDate).After(latest) {
		return ErrAdvanceWindowOver
	}
	return nil
}

func ruleSameDayCutoff(bc bookingContext) error {
	if SameDate(bc.slot.SlotDate, bc.now) && TimeOfDayFrom(bc.now) >= SameDayCutoff {
		return ErrSameDayCutoff
	}
	return nil
}
