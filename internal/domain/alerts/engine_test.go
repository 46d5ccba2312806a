package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

// -------------------------
// Test doubles (in-memory)
// -------------------------

type testMeds struct {
	meds []medications.Medication
	err  error
}

func (s *testMeds) ListByProfile(ctx context.Context, profileID string) ([]medications.Medication, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.meds, nil
}

type testLedger struct {
	entries   []history.Entry
	appendErr error
}

func (l *testLedger) Append(ctx context.Context, e history.Entry) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *testLedger) FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (history.Entry, bool, error) {
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

func med(id string, times ...string) medications.Medication {
	return medications.Medication{
		ID:        id,
		ProfileID: "profile-1",
		Name:      "Losartana",
		Dosage:    "50mg",
		Schedule:  medications.Schedule{Kind: medications.ScheduleEveryDay, Times: times},
		Duration:  medications.DurationWindow{Kind: medications.DurationContinuous},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEngine(meds *testMeds, ledger *testLedger) *Engine {
	return NewEngine("profile-1", meds, ledger, nil)
}

func at(h, m, s int) time.Time {
	return time.Date(2024, 1, 10, h, m, s, 0, time.UTC)
}

// -------------------------
// Tests
// -------------------------

func TestEngine_Tick_FiresOnExactMinute_Once(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "08:00")}}, ledger)

	// Antes del horario: nada.
	e.now = func() time.Time { return at(7, 59, 0) }
	a, err := e.Tick(context.Background())
	if err != nil || a != nil {
		t.Fatalf("expected no alert before schedule, got %v err=%v", a, err)
	}

	// Minuto exacto: arma.
	e.now = func() time.Time { return at(8, 0, 10) }
	a, err = e.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick error: %v", err)
	}
	if a == nil || a.Medication.ID != "med-1" || a.Time != "08:00" {
		t.Fatalf("expected alert for med-1 08:00, got %+v", a)
	}

	// Take y luego otro tick en el mismo minuto: no re-dispara.
	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("Take error: %v", err)
	}
	e.now = func() time.Time { return at(8, 0, 50) }
	a, err = e.Tick(context.Background())
	if err != nil || a != nil {
		t.Fatalf("expected no re-fire within same minute, got %v err=%v", a, err)
	}
}

func TestEngine_Tick_SingleAlertAtATime(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{
		med("med-1", "08:00"),
		med("med-2", "08:00"),
	}}, ledger)

	e.now = func() time.Time { return at(8, 0, 0) }
	a, err := e.Tick(context.Background())
	if err != nil || a == nil {
		t.Fatalf("expected first alert, got %v err=%v", a, err)
	}
	first := a.Medication.ID

	// Con la alerta viva, el tick no arma otra aunque haya más dosis due.
	a, err = e.Tick(context.Background())
	if err != nil || a != nil {
		t.Fatalf("expected no second alert while one is armed, got %v err=%v", a, err)
	}
	if cur := e.CurrentAlert(); cur == nil || cur.Medication.ID != first {
		t.Fatalf("expected current alert to stay %s, got %+v", first, cur)
	}

	// Resuelta la primera, el próximo tick arma la otra.
	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("Take error: %v", err)
	}
	a, err = e.Tick(context.Background())
	if err != nil || a == nil {
		t.Fatalf("expected second alert after take, got %v err=%v", a, err)
	}
	if a.Medication.ID == first {
		t.Fatalf("expected the other medication, got %s again", first)
	}
}

func TestEngine_TakeWritesLedger_AndResolverSeesIt(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "08:00")}}, ledger)

	e.now = func() time.Time { return at(8, 0, 0) }
	if a, err := e.Tick(context.Background()); err != nil || a == nil {
		t.Fatalf("expected alert, got %v err=%v", a, err)
	}
	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("Take error: %v", err)
	}

	if len(ledger.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(ledger.entries))
	}
	got := ledger.entries[0]
	if got.Outcome != history.OutcomeTaken || got.MedicationID != "med-1" || got.ScheduledTime != "08:00" {
		t.Fatalf("unexpected entry: %+v", got)
	}

	now := at(9, 0, 0)
	day, err := e.ResolveDay(context.Background(), now, now)
	if err != nil {
		t.Fatalf("ResolveDay error: %v", err)
	}
	if len(day) != 1 || string(day[0].Status) != "taken" {
		t.Fatalf("expected dose resolved as taken, got %+v", day)
	}
}

func TestEngine_SnoozeRearmsAfterDelay_Once(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "10:00")}}, ledger)

	e.now = func() time.Time { return at(10, 0, 0) }
	if a, err := e.Tick(context.Background()); err != nil || a == nil {
		t.Fatalf("expected alert at 10:00, got %v err=%v", a, err)
	}
	if err := e.Snooze(context.Background(), 5*time.Minute); err != nil {
		t.Fatalf("Snooze error: %v", err)
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Outcome != history.OutcomePostponed {
		t.Fatalf("expected postponed entry after snooze, got %+v", ledger.entries)
	}

	// Antes del vencimiento: nada (ni siquiera en el minuto original).
	e.now = func() time.Time { return at(10, 4, 59) }
	if a, err := e.Tick(context.Background()); err != nil || a != nil {
		t.Fatalf("expected no alert before snooze expiry, got %v err=%v", a, err)
	}

	// Vencido: re-arma exactamente una vez.
	e.now = func() time.Time { return at(10, 5, 0) }
	a, err := e.Tick(context.Background())
	if err != nil || a == nil {
		t.Fatalf("expected re-armed alert at 10:05, got %v err=%v", a, err)
	}
	if a.Time != "10:00" {
		t.Fatalf("expected original slot 10:00 on re-arm, got %s", a.Time)
	}

	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("Take error: %v", err)
	}
	e.now = func() time.Time { return at(10, 6, 0) }
	if a, err := e.Tick(context.Background()); err != nil || a != nil {
		t.Fatalf("expected no further re-fire, got %v err=%v", a, err)
	}
}

func TestEngine_SnoozeDefaultDuration(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "10:00")}}, ledger)

	e.now = func() time.Time { return at(10, 0, 0) }
	if a, err := e.Tick(context.Background()); err != nil || a == nil {
		t.Fatalf("expected alert, got %v err=%v", a, err)
	}
	// Duración <= 0 cae al default de 5 minutos.
	if err := e.Snooze(context.Background(), 0); err != nil {
		t.Fatalf("Snooze error: %v", err)
	}

	e.now = func() time.Time { return at(10, 4, 0) }
	if a, _ := e.Tick(context.Background()); a != nil {
		t.Fatalf("expected no alert before default snooze expiry")
	}
	e.now = func() time.Time { return at(10, 5, 0) }
	if a, _ := e.Tick(context.Background()); a == nil {
		t.Fatalf("expected re-arm after default 5 minutes")
	}
}

func TestEngine_TakeAndSnoozeWithoutAlert(t *testing.T) {
	e := newTestEngine(&testMeds{}, &testLedger{})

	if err := e.Take(context.Background()); !errors.Is(err, ErrNoActiveAlert) {
		t.Fatalf("expected ErrNoActiveAlert on Take, got %v", err)
	}
	if err := e.Snooze(context.Background(), time.Minute); !errors.Is(err, ErrNoActiveAlert) {
		t.Fatalf("expected ErrNoActiveAlert on Snooze, got %v", err)
	}
}

func TestEngine_LedgerFailureKeepsAlertArmed(t *testing.T) {
	boom := errors.New("ledger down")
	ledger := &testLedger{appendErr: boom}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "08:00")}}, ledger)

	e.now = func() time.Time { return at(8, 0, 0) }
	if a, err := e.Tick(context.Background()); err != nil || a == nil {
		t.Fatalf("expected alert, got %v err=%v", a, err)
	}

	if err := e.Take(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected ledger error from Take, got %v", err)
	}
	if e.CurrentAlert() == nil {
		t.Fatalf("expected alert to stay armed after failed take")
	}

	// Con el ledger recuperado, el reintento resuelve.
	ledger.appendErr = nil
	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("retry Take error: %v", err)
	}
	if e.CurrentAlert() != nil {
		t.Fatalf("expected alert cleared after successful retry")
	}
}

func TestEngine_ListFailureKeepsLoopAlive(t *testing.T) {
	src := &testMeds{err: errors.New("db down")}
	e := newTestEngine(src, &testLedger{})

	e.now = func() time.Time { return at(8, 0, 0) }
	if _, err := e.Tick(context.Background()); err == nil {
		t.Fatalf("expected error from failing source")
	}

	// El próximo tick con la fuente sana funciona normal.
	src.err = nil
	src.meds = []medications.Medication{med("med-1", "08:00")}
	a, err := e.Tick(context.Background())
	if err != nil || a == nil {
		t.Fatalf("expected alert on recovered tick, got %v err=%v", a, err)
	}
}

func TestEngine_DayChangeClearsFiredAndSnoozed(t *testing.T) {
	ledger := &testLedger{}
	e := newTestEngine(&testMeds{meds: []medications.Medication{med("med-1", "08:00")}}, ledger)

	e.now = func() time.Time { return at(8, 0, 0) }
	if a, _ := e.Tick(context.Background()); a == nil {
		t.Fatalf("expected alert on day 1")
	}
	if err := e.Take(context.Background()); err != nil {
		t.Fatalf("Take error: %v", err)
	}

	// Mismo horario al día siguiente: fired quedó limpio, dispara de nuevo.
	e.now = func() time.Time {
		return time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	}
	a, err := e.Tick(context.Background())
	if err != nil || a == nil {
		t.Fatalf("expected alert on day 2, got %v err=%v", a, err)
	}
	if medications.FormatDate(a.Date) != "2024-01-11" {
		t.Fatalf("expected alert dated 2024-01-11, got %s", medications.FormatDate(a.Date))
	}
}
