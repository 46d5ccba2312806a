package medications

import "time"

// Schedule es la definición de recurrencia de un medicamento.
// Kind discrimina la variante; los demás campos aplican según Kind:
//   - every_day: solo Times
//   - specific_days: Times + Days
//   - on_off_cycle: Times + OnDays/OffDays (anclado en StartDate del medicamento)
type Schedule struct {
	Kind  ScheduleKind
	Times []string // "HH:MM", únicos, orden ascendente
	Days  []Weekday
	On    int
	Off   int
}

// DurationWindow acota el tratamiento desde StartDate.
// fixed_days cuenta el día de inicio como día 1.
type DurationWindow struct {
	Kind DurationKind
	Days int // solo fixed_days
}

type Medication struct {
	ID        string
	ProfileID string

	Name   string
	Dosage string
	Notes  string

	Schedule  Schedule
	Duration  DurationWindow
	StartDate time.Time // fecha civil, medianoche UTC

	CreatedAt time.Time
	UpdatedAt time.Time
}
