package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-alert/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationCols = `
	id, profile_id, name, dosage, notes,
	schedule_kind, times, days, on_days, off_days,
	duration_kind, duration_days, start_date,
	created_at, updated_at
`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (`+medicationCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, medicationArgs(m)...)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications SET
			profile_id = $2, name = $3, dosage = $4, notes = $5,
			schedule_kind = $6, times = $7, days = $8, on_days = $9, off_days = $10,
			duration_kind = $11, duration_days = $12, start_date = $13,
			created_at = $14, updated_at = $15
		WHERE id = $1
	`, medicationArgs(m)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicationCols+`
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return medications.Medication{}, ErrNotFound
	}
	return m, err
}

func (r *MedicationsRepo) ListByProfile(ctx context.Context, profileID string) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicationCols+`
		FROM medications
		WHERE profile_id = $1
		ORDER BY created_at ASC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func medicationArgs(m medications.Medication) []any {
	days := make([]string, 0, len(m.Schedule.Days))
	for _, d := range m.Schedule.Days {
		days = append(days, string(d))
	}
	return []any{
		m.ID,
		m.ProfileID,
		m.Name,
		m.Dosage,
		m.Notes,
		string(m.Schedule.Kind),
		strings.Join(m.Schedule.Times, ","),
		strings.Join(days, ","),
		m.Schedule.On,
		m.Schedule.Off,
		string(m.Duration.Kind),
		m.Duration.Days,
		m.StartDate,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var schedKind, times, days, durKind string

	if err := row.Scan(
		&m.ID,
		&m.ProfileID,
		&m.Name,
		&m.Dosage,
		&m.Notes,
		&schedKind,
		&times,
		&days,
		&m.Schedule.On,
		&m.Schedule.Off,
		&durKind,
		&m.Duration.Days,
		&m.StartDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	m.Schedule.Kind = medications.ScheduleKind(schedKind)
	m.Duration.Kind = medications.DurationKind(durKind)
	m.StartDate = medications.DateOf(m.StartDate)

	if times != "" {
		m.Schedule.Times = strings.Split(times, ",")
	}
	if days != "" {
		for _, d := range strings.Split(days, ",") {
			m.Schedule.Days = append(m.Schedule.Days, medications.Weekday(d))
		}
	}
	return m, nil
}
