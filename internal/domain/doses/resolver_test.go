package doses

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

// -------------------------
// Test ledger (in-memory)
// -------------------------

type testLedger struct {
	entries []history.Entry
	failOn  error
}

func (l *testLedger) Append(ctx context.Context, e history.Entry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *testLedger) FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (history.Entry, bool, error) {
	if l.failOn != nil {
		return history.Entry{}, false, l.failOn
	}
	day := medications.FormatDate(date)
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.MedicationID == medicationID && e.ScheduledTime == scheduledTime && medications.FormatDate(e.Date) == day {
			return e, true, nil
		}
	}
	return history.Entry{}, false, nil
}

func (l *testLedger) ListByProfile(ctx context.Context, profileID string, filter history.ListFilter) ([]history.Entry, error) {
	return nil, nil
}

func (l *testLedger) DeleteByMedication(ctx context.Context, medicationID string) error {
	return nil
}

// -------------------------
// Tests
// -------------------------

func civil(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func everyDayMed(id string, times ...string) medications.Medication {
	return medications.Medication{
		ID:        id,
		ProfileID: "profile-1",
		Name:      "med " + id,
		Schedule:  medications.Schedule{Kind: medications.ScheduleEveryDay, Times: times},
		Duration:  medications.DurationWindow{Kind: medications.DurationContinuous},
		StartDate: civil(2024, 1, 1),
	}
}

func TestResolveDay_PendingAndMissedByClock(t *testing.T) {
	ledger := &testLedger{}
	r := NewResolver(ledger)

	meds := []medications.Medication{everyDayMed("med-1", "08:00", "20:00")}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	out, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 doses, got %d", len(out))
	}
	if out[0].Time != "08:00" || out[0].Status != StatusMissed {
		t.Fatalf("expected 08:00 missed at noon, got %s %s", out[0].Time, out[0].Status)
	}
	if out[1].Time != "20:00" || out[1].Status != StatusPending {
		t.Fatalf("expected 20:00 pending at noon, got %s %s", out[1].Time, out[1].Status)
	}
}

func TestResolveDay_ExactMinuteIsStillPending(t *testing.T) {
	ledger := &testLedger{}
	r := NewResolver(ledger)

	meds := []medications.Medication{everyDayMed("med-1", "08:00")}
	now := time.Date(2024, 1, 10, 8, 0, 30, 0, time.UTC)

	out, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if out[0].Status != StatusPending {
		t.Fatalf("expected pending during the scheduled minute, got %s", out[0].Status)
	}
}

func TestResolveDay_PastAndFutureDates(t *testing.T) {
	ledger := &testLedger{}
	r := NewResolver(ledger)

	meds := []medications.Medication{everyDayMed("med-1", "08:00")}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	past, err := r.ResolveDay(context.Background(), meds, civil(2024, 1, 9), now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if past[0].Status != StatusMissed {
		t.Fatalf("expected missed for past unrecorded dose, got %s", past[0].Status)
	}

	future, err := r.ResolveDay(context.Background(), meds, civil(2024, 1, 11), now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if future[0].Status != StatusPending {
		t.Fatalf("expected pending for future dose, got %s", future[0].Status)
	}
}

func TestResolveDay_LedgerOutcomeWins(t *testing.T) {
	now := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	ledger := &testLedger{entries: []history.Entry{
		{
			ID:            "e1",
			MedicationID:  "med-1",
			ProfileID:     "profile-1",
			Date:          civil(2024, 1, 10),
			ScheduledTime: "08:00",
			Outcome:       history.OutcomeTaken,
			RecordedAt:    now.Add(-time.Hour),
		},
		{
			ID:            "e2",
			MedicationID:  "med-2",
			ProfileID:     "profile-1",
			Date:          civil(2024, 1, 10),
			ScheduledTime: "08:00",
			Outcome:       history.OutcomeSkipped,
			RecordedAt:    now.Add(-time.Hour),
		},
	}}
	r := NewResolver(ledger)

	meds := []medications.Medication{
		everyDayMed("med-1", "08:00"),
		everyDayMed("med-2", "08:00"),
	}

	out, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if out[0].Status != StatusTaken {
		t.Fatalf("expected taken from ledger, got %s", out[0].Status)
	}
	if out[1].Status != StatusSkipped {
		t.Fatalf("expected skipped from ledger, got %s", out[1].Status)
	}
}

func TestResolveDay_LatestEntryWinsForSameSlot(t *testing.T) {
	now := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	ledger := &testLedger{}
	// postponed primero, taken después: manda el último
	ledger.entries = append(ledger.entries, history.Entry{
		ID: "e1", MedicationID: "med-1", ProfileID: "profile-1",
		Date: civil(2024, 1, 10), ScheduledTime: "08:00",
		Outcome: history.OutcomePostponed, RecordedAt: now.Add(-2 * time.Hour),
	})
	ledger.entries = append(ledger.entries, history.Entry{
		ID: "e2", MedicationID: "med-1", ProfileID: "profile-1",
		Date: civil(2024, 1, 10), ScheduledTime: "08:00",
		Outcome: history.OutcomeTaken, RecordedAt: now.Add(-time.Hour),
	})

	r := NewResolver(ledger)
	out, err := r.ResolveDay(context.Background(), []medications.Medication{everyDayMed("med-1", "08:00")}, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if out[0].Status != StatusTaken {
		t.Fatalf("expected latest entry (taken) to win, got %s", out[0].Status)
	}
}

func TestResolveDay_SortsByTimeThenMedicationID(t *testing.T) {
	ledger := &testLedger{}
	r := NewResolver(ledger)

	meds := []medications.Medication{
		everyDayMed("med-b", "08:00", "12:00"),
		everyDayMed("med-a", "08:00"),
	}
	now := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)

	out, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 doses, got %d", len(out))
	}
	if out[0].Medication.ID != "med-a" || out[0].Time != "08:00" {
		t.Fatalf("expected med-a 08:00 first, got %s %s", out[0].Medication.ID, out[0].Time)
	}
	if out[1].Medication.ID != "med-b" || out[1].Time != "08:00" {
		t.Fatalf("expected med-b 08:00 second, got %s %s", out[1].Medication.ID, out[1].Time)
	}
	if out[2].Time != "12:00" {
		t.Fatalf("expected 12:00 last, got %s", out[2].Time)
	}
}

func TestResolveDay_Idempotent(t *testing.T) {
	ledger := &testLedger{}
	r := NewResolver(ledger)

	meds := []medications.Medication{everyDayMed("med-1", "08:00")}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	first, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay #1 error: %v", err)
	}
	second, err := r.ResolveDay(context.Background(), meds, now, now)
	if err != nil {
		t.Fatalf("ResolveDay #2 error: %v", err)
	}
	if len(ledger.entries) != 0 {
		t.Fatalf("resolver must not write to the ledger, got %d entries", len(ledger.entries))
	}
	if first[0].Status != second[0].Status {
		t.Fatalf("expected identical result on repeat, got %s vs %s", first[0].Status, second[0].Status)
	}
}

func TestResolveDay_RemainingDaysOnlyForFixed(t *testing.T) {
	fixed := everyDayMed("med-1", "08:00")
	fixed.Duration = medications.DurationWindow{Kind: medications.DurationFixedDays, Days: 10}

	r := NewResolver(&testLedger{})
	now := time.Date(2024, 1, 3, 6, 0, 0, 0, time.UTC)

	out, err := r.ResolveDay(context.Background(), []medications.Medication{fixed}, now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if out[0].RemainingDays == nil || *out[0].RemainingDays != 8 {
		t.Fatalf("expected 8 remaining days on day 3, got %v", out[0].RemainingDays)
	}
}

func TestResolveDay_PropagatesLedgerError(t *testing.T) {
	boom := errors.New("ledger down")
	r := NewResolver(&testLedger{failOn: boom})

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	_, err := r.ResolveDay(context.Background(), []medications.Medication{everyDayMed("med-1", "08:00")}, now, now)
	if !errors.Is(err, boom) {
		t.Fatalf("expected ledger error propagated, got %v", err)
	}
}
