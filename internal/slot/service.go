package slot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/clinicore/doctor-slot-service/internal/redis"
)

var ErrDoctorMismatch = errors.New("slot does not belong to this doctor")

// Service implements the slot scheduling and booking engine. Every mutating
// action runs inside a per-doctor mutual-exclusion region supplied by the
// locker, so the read-check-write pattern below is not racy across replicas.
type Service struct {
	repo      Repository
	auditRepo AuditRepository
	locker    redisclient.Locker
	clock     Clock
	logger    zerolog.Logger
	principal string
}

func NewService(repo Repository, auditRepo AuditRepository, locker redisclient.Locker, clock Clock, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		auditRepo: auditRepo,
		locker:    locker,
		clock:     clock,
		logger:    logger.With().Str("component", "slot-service").Logger(),
		principal: SystemPrincipal,
	}
}

// CreateSlots partitions the requested date range into slots over the fixed
// working window. The whole batch is rejected on the first candidate that
// overlaps an already persisted slot; nothing is saved in that case.
func (s *Service) CreateSlots(ctx context.Context, p GenerateParams) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}

	var created int
	err := s.locker.WithDoctorLock(ctx, p.DoctorID, func(lockCtx context.Context) error {
		existing, err := s.repo.FindByDoctorAndDateRange(lockCtx, p.DoctorID, p.StartDate, p.EndDate)
		if err != nil {
			return fmt.Errorf("load existing slots: %w", err)
		}

		candidates := buildCandidates(p)
		for _, c := range candidates {
			if conflicts := FindConflicts(existing, c.DoctorID, c.SlotDate, c.StartTime, c.EndTime); len(conflicts) > 0 {
				return &ConflictError{Date: c.SlotDate, Start: c.StartTime, End: c.EndTime}
			}
		}

		if err := s.repo.SaveAll(lockCtx, candidates); err != nil {
			return fmt.Errorf("save slots: %w", err)
		}
		for _, c := range candidates {
			s.logAction(lockCtx, c.ID, c.DoctorID, ActionCreateSlot, "Slot created.")
		}

		created = len(candidates)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// BlockDateRange transitions every slot in the inclusive range to BLOCKED,
// regardless of its current status.
func (s *Service) BlockDateRange(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) (int, error) {
	var blocked int
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		slots, err := s.repo.FindByDoctorAndDateRange(lockCtx, doctorID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("load slots: %w", err)
		}

		for i := range slots {
			slots[i].Status = StatusBlocked
		}
		if err := s.repo.SaveAll(lockCtx, slots); err != nil {
			return fmt.Errorf("save blocked slots: %w", err)
		}
		for _, sl := range slots {
			s.logAction(lockCtx, sl.ID, sl.DoctorID, ActionBlockDate, "Slot blocked for the selected date range.")
		}

		blocked = len(slots)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return blocked, nil
}

// DeleteSlots removes every slot in the inclusive range, any status, with one
// audit entry per slot recorded before removal. An empty range is not an
// error; the caller gets a zero count.
func (s *Service) DeleteSlots(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) (int, error) {
	var deleted int
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		slots, err := s.repo.FindByDoctorAndDateRange(lockCtx, doctorID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("load slots: %w", err)
		}
		if len(slots) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(slots))
		for _, sl := range slots {
			s.logAction(lockCtx, sl.ID, sl.DoctorID, ActionDeleteSlot, "Slot deleted due to leave or admin removal.")
			ids = append(ids, sl.ID)
		}
		if err := s.repo.DeleteAll(lockCtx, ids); err != nil {
			return fmt.Errorf("delete slots: %w", err)
		}

		deleted = len(slots)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// BookSlot runs the booking rule chain against the slot and, if every rule
// passes, transitions it to BOOKED.
func (s *Service) BookSlot(ctx context.Context, slotID, doctorID uuid.UUID) (*Slot, error) {
	var booked *Slot
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		sl, err := s.loadOwnedSlot(lockCtx, slotID, doctorID)
		if err != nil {
			return err
		}

		sameDay, err := s.repo.FindByDoctorAndDateRange(lockCtx, doctorID, sl.SlotDate, sl.SlotDate)
		if err != nil {
			return fmt.Errorf("load same-day slots: %w", err)
		}

		if err := validateBooking(bookingContext{slot: sl, sameDay: sameDay, now: s.clock.Now()}); err != nil {
			return err
		}

		sl.Status = StatusBooked
		if err := s.repo.Save(lockCtx, sl); err != nil {
			return fmt.Errorf("save booked slot: %w", err)
		}
		s.logAction(lockCtx, sl.ID, sl.DoctorID, ActionBookSlot, "Slot booked successfully.")

		booked = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// LockSlot places a soft hold on an AVAILABLE slot, moving it to PENDING and
// stamping LockedAt. There is no automatic reversion to AVAILABLE.
func (s *Service) LockSlot(ctx context.Context, slotID, doctorID uuid.UUID) (*Slot, error) {
	var locked *Slot
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		sl, err := s.loadOwnedSlot(lockCtx, slotID, doctorID)
		if err != nil {
			return err
		}
		if sl.Status != StatusAvailable {
			return ErrSlotNotAvailable
		}

		now := s.clock.Now()
		sl.Status = StatusPending
		sl.LockedAt = &now
		if err := s.repo.Save(lockCtx, sl); err != nil {
			return fmt.Errorf("save locked slot: %w", err)
		}
		s.logAction(lockCtx, sl.ID, sl.DoctorID, ActionLockSlot, "Slot locked (PENDING) for booking.")

		locked = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locked, nil
}

// MarkUnavailable blocks slots in the inclusive range, skipping any that are
// already BOOKED, BLOCKED, or PENDING.
func (s *Service) MarkUnavailable(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) (int, error) {
	var marked int
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		slots, err := s.repo.FindByDoctorAndDateRange(lockCtx, doctorID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("load slots: %w", err)
		}

		var eligible []Slot
		for _, sl := range slots {
			switch sl.Status {
			case StatusBooked, StatusBlocked, StatusPending:
				continue
			}
			sl.Status = StatusBlocked
			eligible = append(eligible, sl)
		}
		if len(eligible) == 0 {
			return nil
		}

		if err := s.repo.SaveAll(lockCtx, eligible); err != nil {
			return fmt.Errorf("save blocked slots: %w", err)
		}
		for _, sl := range eligible {
			s.logAction(lockCtx, sl.ID, sl.DoctorID, ActionMarkUnavailable, "Slot marked as UNAVAILABLE by system")
		}

		marked = len(eligible)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// RecommendSlot returns the earliest AVAILABLE slot of the doctor on the
// preferred date, or nil when there is none. A miss is informational, not an
// error.
func (s *Service) RecommendSlot(ctx context.Context, doctorID uuid.UUID, preferredDate time.Time) (*Slot, error) {
	slots, err := s.repo.FindByDoctorAndDateRange(ctx, doctorID, preferredDate, preferredDate)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	var available []Slot
	for _, sl := range slots {
		if sl.Status == StatusAvailable {
			available = append(available, sl)
		}
	}
	if len(available) == 0 {
		return nil, nil
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].StartTime < available[j].StartTime
	})
	recommended := available[0]
	return &recommended, nil
}

// BulkDelete removes every slot in the inclusive range without per-slot audit
// entries. The targeted DeleteSlots action is the audited path.
func (s *Service) BulkDelete(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) (int, error) {
	var deleted int
	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		slots, err := s.repo.FindByDoctorAndDateRange(lockCtx, doctorID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("load slots: %w", err)
		}
		if len(slots) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(slots))
		for _, sl := range slots {
			ids = append(ids, sl.ID)
		}
		if err := s.repo.DeleteAll(lockCtx, ids); err != nil {
			return fmt.Errorf("bulk delete slots: %w", err)
		}

		deleted = len(slots)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Service) loadOwnedSlot(ctx context.Context, slotID, doctorID uuid.UUID) (*Slot, error) {
	sl, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if sl.DoctorID != doctorID {
		return nil, ErrDoctorMismatch
	}
	return sl, nil
}

// logAction records an audit entry for a mutating action. Audit failures are
// logged but never fail the operation that produced them.
func (s *Service) logAction(ctx context.Context, slotID, doctorID uuid.UUID, action, message string) {
	entry := AuditLog{
		SlotID:      slotID,
		DoctorID:    doctorID,
		Action:      action,
		Message:     message,
		PerformedBy: s.principal,
		Timestamp:   s.clock.Now(),
	}
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", action).
			Str("slot_id", slotID.String()).
			Msg("failed to record audit entry")
	}
}
