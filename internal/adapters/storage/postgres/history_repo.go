package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Append(ctx context.Context, e history.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_history (
			id, medication_id, profile_id,
			dose_date, scheduled_time,
			outcome, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.MedicationID,
		e.ProfileID,
		medications.DateOf(e.Date),
		e.ScheduledTime,
		string(e.Outcome),
		e.RecordedAt,
	)
	return err
}

// FindEntry devuelve el registro más reciente para la clave
// (medication, fecha, horario); duplicados por clave son esperables
// (ej: postponed y luego taken) y gana el último.
func (r *HistoryRepo) FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (history.Entry, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, profile_id, dose_date, scheduled_time, outcome, recorded_at
		FROM dose_history
		WHERE medication_id = $1 AND dose_date = $2 AND scheduled_time = $3
		ORDER BY recorded_at DESC
		LIMIT 1
	`, medicationID, medications.DateOf(date), scheduledTime)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return history.Entry{}, false, nil
	}
	if err != nil {
		return history.Entry{}, false, err
	}
	return e, true, nil
}

func (r *HistoryRepo) ListByProfile(ctx context.Context, profileID string, filter history.ListFilter) ([]history.Entry, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, medication_id, profile_id, dose_date, scheduled_time, outcome, recorded_at
		FROM dose_history
		WHERE profile_id = $1
	`)

	args := []any{profileID}
	argN := 2

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND dose_date >= $%d", argN))
		args = append(args, medications.DateOf(*filter.From))
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND dose_date <= $%d", argN))
		args = append(args, medications.DateOf(*filter.To))
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY recorded_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *HistoryRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dose_history WHERE medication_id = $1`, medicationID)
	return err
}

func scanEntry(row rowScanner) (history.Entry, error) {
	var e history.Entry
	var outcome string
	if err := row.Scan(
		&e.ID,
		&e.MedicationID,
		&e.ProfileID,
		&e.Date,
		&e.ScheduledTime,
		&outcome,
		&e.RecordedAt,
	); err != nil {
		return history.Entry{}, err
	}
	e.Outcome = history.Outcome(outcome)
	e.Date = medications.DateOf(e.Date)
	return e, nil
}
