package history

import (
	"context"
	"time"
)

// Ledger es el contrato de persistencia del historial de dosis.
// Append-only: las implementaciones nunca mutan registros existentes.
// FindEntry devuelve el registro más reciente para la clave
// (medicationID, date, scheduledTime); ausencia no es un error.
type Ledger interface {
	Append(ctx context.Context, e Entry) error
	FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (Entry, bool, error)
	ListByProfile(ctx context.Context, profileID string, filter ListFilter) ([]Entry, error)

	// DeleteByMedication es la única vía de borrado: cascada al eliminar
	// el medicamento dueño de los registros.
	DeleteByMedication(ctx context.Context, medicationID string) error
}

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
