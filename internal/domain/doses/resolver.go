package doses

import (
	"context"
	"sort"
	"time"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

// Resolver combina recurrencia + ventana de duración + ledger para
// producir las dosis de un día con estado. Es de solo lectura: puede
// llamarse todas las veces que haga falta sin tocar el ledger.
type Resolver struct {
	ledger history.Ledger
}

func NewResolver(ledger history.Ledger) *Resolver {
	return &Resolver{ledger: ledger}
}

// ResolveDay devuelve las dosis programadas de `date` para los
// medicamentos dados, ordenadas por horario ascendente (empate por ID de
// medicamento, para salida determinista).
//
// Reglas de estado por slot:
//   - hay registro en el ledger: el outcome registrado manda
//     (taken/skipped/postponed); gana el más reciente si hubo varios.
//   - sin registro: pending si el horario todavía no pasó (o la fecha es
//     futura); missed si ya pasó.
func (r *Resolver) ResolveDay(ctx context.Context, meds []medications.Medication, date, now time.Time) ([]Dose, error) {
	day := medications.DateOf(date)
	today := medications.DateOf(now)
	nowClock := now.Format("15:04")

	out := make([]Dose, 0)
	for _, med := range meds {
		for _, slot := range med.SlotsOn(day) {
			d := Dose{
				Medication:    med,
				Date:          day,
				Time:          slot,
				RemainingDays: med.RemainingDays(day),
			}

			entry, found, err := r.ledger.FindEntry(ctx, med.ID, day, slot)
			if err != nil {
				return nil, err
			}

			switch {
			case found:
				d.Status = statusFromOutcome(entry.Outcome)
			case day.After(today):
				d.Status = StatusPending
			case day.Before(today):
				d.Status = StatusMissed
			case slot >= nowClock:
				d.Status = StatusPending
			default:
				d.Status = StatusMissed
			}

			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Medication.ID < out[j].Medication.ID
	})

	return out, nil
}

func statusFromOutcome(o history.Outcome) Status {
	switch o {
	case history.OutcomeTaken:
		return StatusTaken
	case history.OutcomePostponed:
		return StatusPostponed
	case history.OutcomeSkipped:
		return StatusSkipped
	default:
		// Outcome desconocido en el ledger: lo reportamos como missed
		// antes que inventar un estado.
		return StatusMissed
	}
}
