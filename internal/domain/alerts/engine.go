package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"med-alert/internal/domain/doses"
	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
	"med-alert/internal/platform/logger"
)

var (
	// ErrNoActiveAlert: Take/Snooze sin alerta armada. Recuperable, el
	// caller decide si lo ignora o lo muestra como no-op.
	ErrNoActiveAlert = errors.New("no active alert")
)

const DefaultSnooze = 5 * time.Minute

// AlertInfo es lo que el motor entrega al caller cuando arma una alerta.
type AlertInfo struct {
	Medication medications.Medication
	Time       string    // "HH:MM" del slot
	Date       time.Time // fecha civil de la dosis
}

// MedicationSource provee los medicamentos del perfil en cada tick.
// medications.Service lo satisface.
type MedicationSource interface {
	ListByProfile(ctx context.Context, profileID string) ([]medications.Medication, error)
}

// Engine es el motor de alertas de un perfil. Mantiene el estado mutable
// del loop (fired, snoozed, alerta activa) detrás de un mutex: ningún par
// de ticks, ni un tick y un acknowledge, intercalan su read-modify-write.
//
// Invariantes:
//   - a lo sumo una alerta armada a la vez; Tick no pisa una alerta viva.
//   - una clave (medicamento, horario, fecha) dispara a lo sumo una vez
//     por día, salvo re-armado explícito por snooze vencido.
//   - fired y snoozed se vacían al cambiar la fecha del reloj.
type Engine struct {
	profileID string
	meds      MedicationSource
	ledger    history.Ledger
	resolver  *doses.Resolver
	log       logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	fired   map[string]struct{}
	snoozed map[string]time.Time
	active  *AlertInfo
	lastDay string
}

func NewEngine(profileID string, meds MedicationSource, ledger history.Ledger, log logger.Logger) *Engine {
	return &Engine{
		profileID: profileID,
		meds:      meds,
		ledger:    ledger,
		resolver:  doses.NewResolver(ledger),
		log:       log,
		now:       time.Now,
		fired:     make(map[string]struct{}),
		snoozed:   make(map[string]time.Time),
	}
}

func slotKey(medicationID, timeOfDay, day string) string {
	return fmt.Sprintf("%s|%s|%s", medicationID, timeOfDay, day)
}

// Tick avanza el loop un paso. Devuelve la alerta recién armada, o nil si
// no cambió nada. Un error (ledger caído) descarta la decisión de este
// tick; el loop sigue vivo y reintenta en el próximo.
//
// El match de horario es exacto al minuto: si el proceso no estaba
// corriendo durante el minuto programado, esa alerta se pierde por el
// resto del día (la dosis igual se resuelve como missed). Limitación
// conocida, no se recupera retroactivamente.
func (e *Engine) Tick(ctx context.Context) (*AlertInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	day := medications.FormatDate(now)

	// Cambio de fecha: estado limpio. Se compara fecha contra fecha (y no
	// el string "00:00" del original) para no depender de que un tick
	// caiga justo en ese minuto.
	if e.lastDay != "" && e.lastDay != day {
		e.fired = make(map[string]struct{})
		e.snoozed = make(map[string]time.Time)
	}
	e.lastDay = day

	// Alerta viva: no se arma una segunda.
	if e.active != nil {
		return nil, nil
	}

	meds, err := e.meds.ListByProfile(ctx, e.profileID)
	if err != nil {
		e.warn("tick: listing medications failed", err)
		return nil, err
	}

	todays, err := e.resolver.ResolveDay(ctx, meds, now, now)
	if err != nil {
		e.warn("tick: resolving doses failed", err)
		return nil, err
	}

	// 1) Snooze vencido: máxima prioridad. Una dosis adiada figura como
	// postponed en el ledger, así que acá cuentan pending y postponed.
	for _, d := range todays {
		if d.Status != doses.StatusPending && d.Status != doses.StatusPostponed {
			continue
		}
		key := slotKey(d.Medication.ID, d.Time, day)
		wake, ok := e.snoozed[key]
		if !ok || now.Before(wake) {
			continue
		}
		delete(e.snoozed, key)
		e.arm(d)
		return e.copyActive(), nil
	}

	// 2) Horario de dosis: minuto actual exacto, sin snooze pendiente y
	// que no haya disparado ya hoy.
	minute := now.Format("15:04")
	for _, d := range todays {
		if d.Status != doses.StatusPending || d.Time != minute {
			continue
		}
		key := slotKey(d.Medication.ID, d.Time, day)
		if _, snoozing := e.snoozed[key]; snoozing {
			continue
		}
		if _, done := e.fired[key]; done {
			continue
		}
		e.fired[key] = struct{}{}
		e.arm(d)
		return e.copyActive(), nil
	}

	return nil, nil
}

// Take registra la dosis de la alerta armada como tomada y la descarta.
// Vale aunque la dosis ya figure como missed en el dashboard: el registro
// tardío siempre es válido y el resolver lo refleja solo.
func (e *Engine) Take(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrNoActiveAlert
	}

	if err := e.record(ctx, *e.active, history.OutcomeTaken); err != nil {
		// La alerta queda armada; el caller puede reintentar.
		return err
	}

	e.active = nil
	return nil
}

// Snooze adía la alerta armada: anota el despertar en el mapa de snooze,
// registra postponed en el ledger y descarta la alerta. Cuando venza, el
// tick la re-arma exactamente una vez.
func (e *Engine) Snooze(ctx context.Context, d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrNoActiveAlert
	}
	if d <= 0 {
		d = DefaultSnooze
	}

	a := *e.active
	if err := e.record(ctx, a, history.OutcomePostponed); err != nil {
		return err
	}

	key := slotKey(a.Medication.ID, a.Time, medications.FormatDate(a.Date))
	e.snoozed[key] = e.now().Add(d)
	e.active = nil
	return nil
}

// CurrentAlert devuelve una copia de la alerta armada, o nil.
func (e *Engine) CurrentAlert() *AlertInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyActive()
}

// ResolveDay expone la consulta pura del resolver para este perfil.
func (e *Engine) ResolveDay(ctx context.Context, date, now time.Time) ([]doses.Dose, error) {
	meds, err := e.meds.ListByProfile(ctx, e.profileID)
	if err != nil {
		return nil, err
	}
	return e.resolver.ResolveDay(ctx, meds, date, now)
}

func (e *Engine) arm(d doses.Dose) {
	e.active = &AlertInfo{
		Medication: d.Medication,
		Time:       d.Time,
		Date:       d.Date,
	}
}

func (e *Engine) copyActive() *AlertInfo {
	if e.active == nil {
		return nil
	}
	a := *e.active
	return &a
}

func (e *Engine) record(ctx context.Context, a AlertInfo, outcome history.Outcome) error {
	return e.ledger.Append(ctx, history.Entry{
		ID:            uuid.NewString(),
		MedicationID:  a.Medication.ID,
		ProfileID:     a.Medication.ProfileID,
		Date:          medications.DateOf(a.Date),
		ScheduledTime: a.Time,
		Outcome:       outcome,
		RecordedAt:    e.now(),
	})
}

func (e *Engine) warn(msg string, err error) {
	if e.log == nil {
		return
	}
	e.log.Warn(msg, map[string]any{
		"profile_id": e.profileID,
		"error":      err.Error(),
	})
}
