package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/clinicore/doctor-slot-service/internal/redis"
	"github.com/clinicore/doctor-slot-service/internal/slot"
)

func newTestHandler(t *testing.T) (http.HandlerFunc, *slot.MemoryRepository) {
	t.Helper()
	repo := slot.NewMemoryRepository()
	svc := slot.NewService(repo, repo.AuditSide(), redisclient.NewLocalLocker(), slot.SystemClock(), zerolog.Nop())
	return slotActionHandler(svc), repo
}

func postAction(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slot-management", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSlotActionMissingAction(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postAction(t, handler, SlotActionRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details != "Missing action type." {
		t.Fatalf("details = %q, want %q", resp.Details, "Missing action type.")
	}
}

func TestSlotActionUnsupportedAction(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postAction(t, handler, SlotActionRequest{Action: "CANCEL_EVERYTHING"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details != "Unsupported action." {
		t.Fatalf("details = %q, want %q", resp.Details, "Unsupported action.")
	}
}

func TestSlotActionCreateSlots(t *testing.T) {
	handler, _ := newTestHandler(t)
	doctorID := uuid.New()

	rec := postAction(t, handler, SlotActionRequest{
		Action:       ActionCreateSlots,
		DoctorID:     doctorID.String(),
		StartDate:    "2030-05-06",
		EndDate:      "2030-05-06",
		SlotDuration: 60,
		SlotType:     "consultation",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp ActionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count == nil || *resp.Count != 4 {
		t.Fatalf("count = %v, want 4", resp.Count)
	}
	if resp.Message != "Created 4 slots." {
		t.Fatalf("message = %q", resp.Message)
	}

	// A second identical run collides with the persisted batch.
	rec = postAction(t, handler, SlotActionRequest{
		Action:       ActionCreateSlots,
		DoctorID:     doctorID.String(),
		StartDate:    "2030-05-06",
		EndDate:      "2030-05-06",
		SlotDuration: 60,
		SlotType:     "consultation",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflicting run: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSlotActionMissingFieldRejectsBeforeRepositoryAccess(t *testing.T) {
	handler, repo := newTestHandler(t)

	rec := postAction(t, handler, SlotActionRequest{Action: ActionBookSlot, SlotID: uuid.New().String()})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if entries := repo.AuditEntries(); len(entries) != 0 {
		t.Fatalf("validation failure must not touch state, got %d audit entries", len(entries))
	}
}

func TestSlotActionBookUnknownSlot(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postAction(t, handler, SlotActionRequest{
		Action:   ActionBookSlot,
		SlotID:   uuid.New().String(),
		DoctorID: uuid.New().String(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSlotActionDeleteEmptyRange(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postAction(t, handler, SlotActionRequest{
		Action:    ActionDeleteSlots,
		DoctorID:  uuid.New().String(),
		StartDate: "2030-05-06",
		EndDate:   "2030-05-07",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp ActionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "No slots found to delete." {
		t.Fatalf("message = %q", resp.Message)
	}
	if resp.Count == nil || *resp.Count != 0 {
		t.Fatalf("count = %v, want 0", resp.Count)
	}
}
