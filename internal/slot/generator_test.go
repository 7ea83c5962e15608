package slot

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildCandidatesHourlySingleDay(t *testing.T) {
	day := date(2026, 9, 2)
	candidates := buildCandidates(GenerateParams{
		DoctorID:     uuid.New(),
		StartDate:    day,
		EndDate:      day,
		SlotDuration: 60,
		SlotType:     "consultation",
	})

	want := []struct{ start, end TimeOfDay }{
		{NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)},
		{NewTimeOfDay(10, 0), NewTimeOfDay(11, 0)},
		{NewTimeOfDay(11, 0), NewTimeOfDay(12, 0)},
		{NewTimeOfDay(12, 0), NewTimeOfDay(13, 0)},
	}
	if len(candidates) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(candidates))
	}
	for i, w := range want {
		if candidates[i].StartTime != w.start || candidates[i].EndTime != w.end {
			t.Errorf("slot %d: got %s-%s, want %s-%s",
				i, candidates[i].StartTime, candidates[i].EndTime, w.start, w.end)
		}
		if candidates[i].Status != StatusAvailable {
			t.Errorf("slot %d: status %s, want %s", i, candidates[i].Status, StatusAvailable)
		}
		if !candidates[i].SlotDate.Equal(day) {
			t.Errorf("slot %d: date %s, want %s", i, candidates[i].SlotDate, day)
		}
	}
}

func TestBuildCandidatesDropsFinalPartialSlot(t *testing.T) {
	day := date(2026, 9, 2)
	// 50-minute strides in a 240-minute window: the fifth candidate would end
	// at 13:10 and must be dropped.
	candidates := buildCandidates(GenerateParams{
		DoctorID:     uuid.New(),
		StartDate:    day,
		EndDate:      day,
		SlotDuration: 50,
	})

	if len(candidates) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(candidates))
	}
	last := candidates[len(candidates)-1]
	if last.EndTime > WorkingDayEnd {
		t.Fatalf("last slot ends at %s, past the window close", last.EndTime)
	}
}

func TestBuildCandidatesMultiDayAndDefaults(t *testing.T) {
	start := date(2026, 9, 2)
	end := date(2026, 9, 4)
	candidates := buildCandidates(GenerateParams{
		DoctorID:     uuid.New(),
		StartDate:    start,
		EndDate:      end,
		SlotDuration: 120,
	})

	// Two 2-hour slots per day over three days.
	if len(candidates) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.AccessType != AccessNormal {
			t.Fatalf("access type defaulted to %s, want %s", c.AccessType, AccessNormal)
		}
	}
}

func TestGenerateParamsValidate(t *testing.T) {
	day := date(2026, 9, 2)

	p := GenerateParams{StartDate: day, EndDate: day, SlotDuration: 0}
	if err := p.validate(); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	p = GenerateParams{StartDate: day.AddDate(0, 0, 1), EndDate: day, SlotDuration: 30}
	if err := p.validate(); err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}

	p = GenerateParams{StartDate: day, EndDate: day, SlotDuration: 30}
	if err := p.validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != NewTimeOfDay(9, 30) {
		t.Fatalf("got %d, want %d", got, NewTimeOfDay(9, 30))
	}
	if got.String() != "09:30" {
		t.Fatalf("String() = %q, want %q", got.String(), "09:30")
	}

	if _, err := ParseTimeOfDay("25:99"); err == nil {
		t.Fatal("expected error for invalid time of day")
	}
}
