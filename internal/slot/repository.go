package slot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSlotNotFound = errors.New("slot not found")

// Repository contains all slot storage interactions needed by the service.
// Range queries are inclusive on both dates.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	FindByDoctorAndDateRange(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]Slot, error)
	Save(ctx context.Context, s *Slot) error
	SaveAll(ctx context.Context, slots []Slot) error
	DeleteAll(ctx context.Context, ids []uuid.UUID) error
}

// AuditRepository persists audit entries. Append-only.
type AuditRepository interface {
	Save(ctx context.Context, entry AuditLog) error
}
