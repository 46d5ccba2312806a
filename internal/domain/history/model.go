package history

import "time"

// Entry es un registro inmutable del ledger de dosis: qué pasó con la
// dosis programada de un medicamento en (fecha, horario). Solo se agrega,
// nunca se edita; un registro posterior para la misma clave reemplaza al
// anterior a efectos de resolución de estado (gana el más reciente).
type Entry struct {
	ID           string
	MedicationID string
	ProfileID    string

	Date          time.Time // fecha civil de la dosis programada
	ScheduledTime string    // "HH:MM" del slot programado

	Outcome    Outcome
	RecordedAt time.Time // instante real en que se registró el resultado
}
