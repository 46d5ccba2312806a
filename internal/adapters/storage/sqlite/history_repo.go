package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
)

type HistoryRepo struct {
	db *sqlx.DB
}

func NewHistoryRepo(db *sqlx.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type entryRow struct {
	ID            string    `db:"id"`
	MedicationID  string    `db:"medication_id"`
	ProfileID     string    `db:"profile_id"`
	DoseDate      string    `db:"dose_date"` // YYYY-MM-DD
	ScheduledTime string    `db:"scheduled_time"`
	Outcome       string    `db:"outcome"`
	RecordedAt    time.Time `db:"recorded_at"`
}

func (r *HistoryRepo) Append(ctx context.Context, e history.Entry) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO dose_history (
			id, medication_id, profile_id, dose_date, scheduled_time, outcome, recorded_at
		) VALUES (
			:id, :medication_id, :profile_id, :dose_date, :scheduled_time, :outcome, :recorded_at
		)
	`, entryRow{
		ID:            e.ID,
		MedicationID:  e.MedicationID,
		ProfileID:     e.ProfileID,
		DoseDate:      medications.FormatDate(e.Date),
		ScheduledTime: e.ScheduledTime,
		Outcome:       string(e.Outcome),
		RecordedAt:    e.RecordedAt,
	})
	return err
}

func (r *HistoryRepo) FindEntry(ctx context.Context, medicationID string, date time.Time, scheduledTime string) (history.Entry, bool, error) {
	var row entryRow
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM dose_history
		WHERE medication_id = ? AND dose_date = ? AND scheduled_time = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, medicationID, medications.FormatDate(date), scheduledTime)
	if err == sql.ErrNoRows {
		return history.Entry{}, false, nil
	}
	if err != nil {
		return history.Entry{}, false, err
	}

	e, err := row.toModel()
	if err != nil {
		return history.Entry{}, false, err
	}
	return e, true, nil
}

func (r *HistoryRepo) ListByProfile(ctx context.Context, profileID string, filter history.ListFilter) ([]history.Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	q := `SELECT * FROM dose_history WHERE profile_id = ?`
	args := []any{profileID}

	if filter.From != nil {
		q += ` AND dose_date >= ?`
		args = append(args, medications.FormatDate(*filter.From))
	}
	if filter.To != nil {
		q += ` AND dose_date <= ?`
		args = append(args, medications.FormatDate(*filter.To))
	}

	q += ` ORDER BY recorded_at DESC LIMIT ?`
	args = append(args, limit)

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}

	out := make([]history.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *HistoryRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dose_history WHERE medication_id = ?`, medicationID)
	return err
}

func (row entryRow) toModel() (history.Entry, error) {
	date, err := medications.ParseDate(row.DoseDate)
	if err != nil {
		return history.Entry{}, err
	}
	return history.Entry{
		ID:            row.ID,
		MedicationID:  row.MedicationID,
		ProfileID:     row.ProfileID,
		Date:          date,
		ScheduledTime: row.ScheduledTime,
		Outcome:       history.Outcome(row.Outcome),
		RecordedAt:    row.RecordedAt,
	}, nil
}
