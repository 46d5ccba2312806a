package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

type historyRepo struct {
	mu      sync.RWMutex
	entries []history.Entry
}

// NewHistoryRepo crea un ledger en memoria. Append-only: la slice solo
// crece (salvo la cascada por borrado de medicamento).
func NewHistoryRepo() history.Ledger {
	return &historyRepo{
		entries: make([]history.Entry, 0),
	}
}

func (r *historyRepo) Append(ctx context.Context, e history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("entry id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *historyRepo) FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (history.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := medications.FormatDate(date)

	// Recorrido de atrás hacia adelante: para claves duplicadas gana el
	// registro más reciente.
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.MedicationID == medicationID &&
			e.ScheduledTime == scheduledTime &&
			medications.FormatDate(e.Date) == day {
			return e, true, nil
		}
	}
	return history.Entry{}, false, nil
}

func (r *historyRepo) ListByProfile(ctx context.Context, profileID string, filter history.ListFilter) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	out := make([]history.Entry, 0)
	for _, e := range r.entries {
		if e.ProfileID != profileID {
			continue
		}
		if filter.From != nil && e.Date.Before(medications.DateOf(*filter.From)) {
			continue
		}
		if filter.To != nil && e.Date.After(medications.DateOf(*filter.To)) {
			continue
		}
		out = append(out, e)
	}

	// Más recientes primero, como la vista de historial.
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *historyRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.MedicationID != medicationID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}
