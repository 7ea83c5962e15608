package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const slotColumns = `id, doctor_id, slot_date, start_time, end_time, slot_type, access_type, slot_status, locked_at, location, notes, created_at, updated_at`

// Helpers

func timeOfDayParam(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * int64(time.Minute/time.Microsecond), Valid: true}
}

func timeOfDayFromPg(t pgtype.Time) TimeOfDay {
	return TimeOfDay(t.Microseconds / int64(time.Minute/time.Microsecond))
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var (
		s          Slot
		start, end pgtype.Time
		lockedAt   *time.Time
	)

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.SlotDate,
		&start,
		&end,
		&s.SlotType,
		&s.AccessType,
		&s.Status,
		&lockedAt,
		&s.Location,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.SlotDate = DateOf(s.SlotDate)
	s.StartTime = timeOfDayFromPg(start)
	s.EndTime = timeOfDayFromPg(end)
	s.LockedAt = lockedAt
	return &s, nil
}

// Interface methods

func (r *PgRepository) FindByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) FindByDoctorAndDateRange(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE doctor_id = $1
		  AND slot_date BETWEEN $2 AND $3
		ORDER BY slot_date, start_time
	`, doctorID, DateOf(startDate), DateOf(endDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

const upsertSlotSQL = `
	INSERT INTO slots (id, doctor_id, slot_date, start_time, end_time, slot_type, access_type, slot_status, locked_at, location, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	ON CONFLICT (id) DO UPDATE
	SET slot_status = EXCLUDED.slot_status,
	    locked_at   = EXCLUDED.locked_at,
	    updated_at  = now()
`

func (r *PgRepository) Save(ctx context.Context, s *Slot) error {
	_, err := r.pool.Exec(ctx, upsertSlotSQL,
		s.ID, s.DoctorID, DateOf(s.SlotDate),
		timeOfDayParam(s.StartTime), timeOfDayParam(s.EndTime),
		s.SlotType, s.AccessType, s.Status, s.LockedAt, s.Location, s.Notes,
	)
	if err != nil {
		return fmt.Errorf("save slot: %w", err)
	}
	return nil
}

// SaveAll writes the slots in a single batch inside one transaction, so a
// generation run persists all-or-nothing.
func (r *PgRepository) SaveAll(ctx context.Context, slots []Slot) error {
	if len(slots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range slots {
		batch.Queue(upsertSlotSQL,
			s.ID, s.DoctorID, DateOf(s.SlotDate),
			timeOfDayParam(s.StartTime), timeOfDayParam(s.EndTime),
			s.SlotType, s.AccessType, s.Status, s.LockedAt, s.Location, s.Notes,
		)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save slots batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save batch: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteAll(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}

// PgAuditRepository stores audit entries. Rows are insert-only.
type PgAuditRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuditRepository(pool *pgxpool.Pool) *PgAuditRepository {
	return &PgAuditRepository{pool: pool}
}

func (r *PgAuditRepository) Save(ctx context.Context, entry AuditLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO slot_audit_logs (slot_id, doctor_id, action, message, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`, entry.SlotID, entry.DoctorID, entry.Action, entry.Message, entry.PerformedBy, nullableTime(entry.Timestamp))
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
