package slot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusPending   Status = "PENDING"
	StatusBooked    Status = "BOOKED"
	StatusBlocked   Status = "BLOCKED"
)

type AccessType string

const (
	AccessNormal    AccessType = "NORMAL"
	AccessWalkIn    AccessType = "WALK_IN"
	AccessEmergency AccessType = "EMERGENCY"
)

// Audit action codes. The audit log treats these as opaque text.
const (
	ActionCreateSlot      = "CREATE_SLOT"
	ActionBookSlot        = "BOOK_SLOT"
	ActionLockSlot        = "LOCK_SLOT"
	ActionBlockDate       = "BLOCK_DATE"
	ActionMarkUnavailable = "MARK_UNAVAILABLE"
	ActionDeleteSlot      = "DELETE_SLOT"
)

// SystemPrincipal is recorded as the audit actor when no authenticated
// actor is available.
const SystemPrincipal = "system"

// TimeOfDay is a time-of-day expressed as minutes since midnight.
// Slots never cross midnight, so plain minute arithmetic is enough.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayFrom extracts the time-of-day component of t.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDayFrom(t), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DateOf truncates t to a calendar date at midnight UTC. Slot dates carry
// no time-zone component, so all date comparisons go through this.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

type Slot struct {
	ID         uuid.UUID
	DoctorID   uuid.UUID
	SlotDate   time.Time // date only, midnight UTC
	StartTime  TimeOfDay
	EndTime    TimeOfDay
	SlotType   string
	AccessType AccessType
	Status     Status
	LockedAt   *time.Time
	Location   string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditLog is an append-only record of a mutating action taken on a slot.
// Entries outlive the slots they reference and are never updated or deleted.
type AuditLog struct {
	ID          int64
	SlotID      uuid.UUID
	DoctorID    uuid.UUID
	Action      string
	Message     string
	PerformedBy string
	Timestamp   time.Time
}
