package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation of Repository and
// AuditRepository for tests and local experiments.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]Slot
	audit []AuditLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[uuid.UUID]Slot)}
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) FindByDoctorAndDateRange(_ context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to := DateOf(startDate), DateOf(endDate)
	var result []Slot
	for _, s := range r.slots {
		if s.DoctorID != doctorID {
			continue
		}
		if s.SlotDate.Before(from) || s.SlotDate.After(to) {
			continue
		}
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SlotDate.Equal(result[j].SlotDate) {
			return result[i].SlotDate.Before(result[j].SlotDate)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (r *MemoryRepository) Save(_ context.Context, s *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = time.Now()
	r.slots[stored.ID] = stored
	return nil
}

func (r *MemoryRepository) SaveAll(ctx context.Context, slots []Slot) error {
	for i := range slots {
		if err := r.Save(ctx, &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.slots, id)
	}
	return nil
}

// AuditRepository side.

func (r *MemoryRepository) SaveAudit(_ context.Context, entry AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = int64(len(r.audit) + 1)
	r.audit = append(r.audit, entry)
	return nil
}

// AuditEntries returns a copy of every recorded entry in insertion order.
func (r *MemoryRepository) AuditEntries() []AuditLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AuditLog, len(r.audit))
	copy(out, r.audit)
	return out
}

// memoryAuditAdapter exposes the audit side of MemoryRepository under the
// AuditRepository interface.
type memoryAuditAdapter struct{ repo *MemoryRepository }

func (a memoryAuditAdapter) Save(ctx context.Context, entry AuditLog) error {
	return a.repo.SaveAudit(ctx, entry)
}

// AuditSide adapts the repository to AuditRepository.
func (r *MemoryRepository) AuditSide() AuditRepository {
	return memoryAuditAdapter{repo: r}
}
