package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/clinicore/doctor-slot-service/internal/db"
	"github.com/clinicore/doctor-slot-service/internal/logging"
	redisclient "github.com/clinicore/doctor-slot-service/internal/redis"
	"github.com/clinicore/doctor-slot-service/internal/slot"
)

// Seeds a handful of demo doctors and generates a week of slots for each
// through the real generator, so the booking rules can be exercised by hand.
func main() {
	logger := logging.Setup(os.Getenv("APP_ENV"))
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	gofakeit.Seed(time.Now().UnixNano())

	repo := slot.NewPgRepository(pool)
	auditRepo := slot.NewPgAuditRepository(pool)
	svc := slot.NewService(repo, auditRepo, redisclient.NewLocalLocker(), slot.SystemClock(), logger)

	slotTypes := []string{"consultation", "follow-up", "checkup"}
	accessTypes := []slot.AccessType{slot.AccessNormal, slot.AccessNormal, slot.AccessWalkIn, slot.AccessEmergency}

	today := slot.DateOf(time.Now())
	seedCtx := context.Background()

	for i := 0; i < 5; i++ {
		doctorID := uuid.New()
		duration := []int{20, 30, 60}[gofakeit.Number(0, 2)]

		count, err := svc.CreateSlots(seedCtx, slot.GenerateParams{
			DoctorID:     doctorID,
			StartDate:    today,
			EndDate:      today.AddDate(0, 0, 6),
			SlotDuration: duration,
			SlotType:     slotTypes[gofakeit.Number(0, len(slotTypes)-1)],
			AccessType:   accessTypes[gofakeit.Number(0, len(accessTypes)-1)],
			Location:     gofakeit.City() + " Clinic, Room " + gofakeit.DigitN(3),
			Notes:        gofakeit.Sentence(6),
		})
		if err != nil {
			logger.Fatal().Err(err).Str("doctor_id", doctorID.String()).Msg("generate slots")
		}
		logger.Info().
			Str("doctor_id", doctorID.String()).
			Int("slot_duration", duration).
			Int("count", count).
			Msg("seeded doctor schedule")
	}

	logger.Info().Msg("seed complete")
}
