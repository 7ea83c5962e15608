package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/doctor-slot-service/internal/logging"
)

// Drives the slot-management endpoint with a mixed workload: slot generation,
// bookings, locks, recommendations and the occasional block, against a small
// pool of doctors. Useful for watching the rule engine and the per-doctor
// lock under contention.

type simConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Doctors    int
}

type actionRequest struct {
	Action       string `json:"action"`
	DoctorID     string `json:"doctor_id,omitempty"`
	SlotID       string `json:"slot_id,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	SlotDuration int    `json:"slot_duration,omitempty"`
	SlotType     string `json:"slot_type,omitempty"`
}

type actionResponse struct {
	Message string `json:"message"`
	Slot    *struct {
		ID string `json:"id"`
	} `json:"slot,omitempty"`
}

type slotPool struct {
	mu  sync.Mutex
	ids []string
}

func (p *slotPool) add(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

func (p *slotPool) random() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return "", false
	}
	return p.ids[rand.Intn(len(p.ids))], true
}

func main() {
	logger := logging.Setup(os.Getenv("APP_ENV"))

	cfg := simConfig{
		APIBaseURL: envOr("SIM_API_URL", "http://localhost:8080"),
		Duration:   envDuration("SIM_DURATION", 30*time.Second),
		Workers:    envInt("SIM_WORKERS", 8),
		Doctors:    envInt("SIM_DOCTORS", 4),
	}
	logger.Info().
		Str("api", cfg.APIBaseURL).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Int("doctors", cfg.Doctors).
		Msg("simulate starting")

	doctors := make([]uuid.UUID, cfg.Doctors)
	for i := range doctors {
		doctors[i] = uuid.New()
	}

	client := &http.Client{Timeout: 10 * time.Second}
	today := time.Now().UTC().Format("2006-01-02")
	week := time.Now().UTC().AddDate(0, 0, 6).Format("2006-01-02")

	// Generate a schedule per doctor up front so the workers have slots to
	// fight over.
	pool := &slotPool{}
	for _, d := range doctors {
		req := actionRequest{
			Action:       "CREATE_SLOTS",
			DoctorID:     d.String(),
			StartDate:    today,
			EndDate:      week,
			SlotDuration: 20,
			SlotType:     "consultation",
		}
		status, _, err := post(context.Background(), client, cfg.APIBaseURL, req)
		if err != nil || status != http.StatusOK {
			logger.Warn().Err(err).Int("status", status).Str("doctor_id", d.String()).Msg("initial slot generation failed")
		}
	}
	for _, d := range doctors {
		harvestRecommendations(client, cfg.APIBaseURL, d, today, pool)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithTimeout(rootCtx, cfg.Duration)
	defer cancel()

	var ok, rejected, failed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for runCtx.Err() == nil {
				doctor := doctors[rand.Intn(len(doctors))]
				req := randomAction(doctor, pool, today, week)

				status, resp, err := post(runCtx, client, cfg.APIBaseURL, req)
				switch {
				case err != nil:
					if runCtx.Err() == nil {
						failed.Add(1)
					}
				case status == http.StatusOK:
					ok.Add(1)
					if resp != nil && resp.Slot != nil {
						pool.add(resp.Slot.ID)
					}
				default:
					rejected.Add(1)
				}

				time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
			}
		}()
	}
	wg.Wait()

	logger.Info().
		Int64("ok", ok.Load()).
		Int64("rejected", rejected.Load()).
		Int64("failed", failed.Load()).
		Msg("simulate complete")
}

func randomAction(doctor uuid.UUID, pool *slotPool, today, week string) actionRequest {
	roll := rand.Intn(100)
	switch {
	case roll < 50:
		if id, found := pool.random(); found {
			return actionRequest{Action: "BOOK_SLOT", DoctorID: doctor.String(), SlotID: id}
		}
		return actionRequest{Action: "RECOMMEND_SLOT", DoctorID: doctor.String(), StartDate: today}
	case roll < 70:
		return actionRequest{Action: "RECOMMEND_SLOT", DoctorID: doctor.String(), StartDate: today}
	case roll < 90:
		if id, found := pool.random(); found {
			return actionRequest{Action: "LOCK_SLOT", DoctorID: doctor.String(), SlotID: id}
		}
		return actionRequest{Action: "RECOMMEND_SLOT", DoctorID: doctor.String(), StartDate: today}
	default:
		return actionRequest{Action: "MARK_UNAVAILABLE", DoctorID: doctor.String(), StartDate: week, EndDate: week}
	}
}

func harvestRecommendations(client *http.Client, baseURL string, doctor uuid.UUID, date string, pool *slotPool) {
	status, resp, err := post(context.Background(), client, baseURL, actionRequest{
		Action:    "RECOMMEND_SLOT",
		DoctorID:  doctor.String(),
		StartDate: date,
	})
	if err != nil || status != http.StatusOK || resp == nil || resp.Slot == nil {
		return
	}
	pool.add(resp.Slot.ID)
}

func post(ctx context.Context, client *http.Client, baseURL string, body actionRequest) (int, *actionResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/slot-management", bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	var parsed actionResponse
	if res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return res.StatusCode, nil, nil
		}
		return res.StatusCode, &parsed, nil
	}
	return res.StatusCode, nil, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
