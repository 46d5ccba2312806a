package doses

import (
	"time"

	"med-alert/internal/domain/medications"
)

// Status es el estado resuelto de una dosis para una fecha concreta.
// @Enum pending, taken, missed, skipped, postponed
type Status string

const (
	StatusPending   Status = "pending"
	StatusTaken     Status = "taken"
	StatusMissed    Status = "missed"
	StatusSkipped   Status = "skipped"
	StatusPostponed Status = "postponed"
)

// Dose es la vista transitoria de un slot (medicamento, horario) en una
// fecha, con su estado resuelto contra el ledger. Nunca se persiste;
// se recalcula en cada consulta.
type Dose struct {
	Medication medications.Medication
	Date       time.Time
	Time       string
	Status     Status

	// RemainingDays solo viene para tratamientos de duración fija
	// (incluye el día consultado).
	RemainingDays *int
}
