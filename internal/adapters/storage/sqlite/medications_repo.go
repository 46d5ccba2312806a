package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"med-alert/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sqlx.DB
}

func NewMedicationsRepo(db *sqlx.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

type medicationRow struct {
	ID           string    `db:"id"`
	ProfileID    string    `db:"profile_id"`
	Name         string    `db:"name"`
	Dosage       string    `db:"dosage"`
	Notes        string    `db:"notes"`
	ScheduleKind string    `db:"schedule_kind"`
	Times        string    `db:"times"`
	Days         string    `db:"days"`
	OnDays       int       `db:"on_days"`
	OffDays      int       `db:"off_days"`
	DurationKind string    `db:"duration_kind"`
	DurationDays int       `db:"duration_days"`
	StartDate    string    `db:"start_date"` // YYYY-MM-DD
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO medications (
			id, profile_id, name, dosage, notes,
			schedule_kind, times, days, on_days, off_days,
			duration_kind, duration_days, start_date,
			created_at, updated_at
		) VALUES (
			:id, :profile_id, :name, :dosage, :notes,
			:schedule_kind, :times, :days, :on_days, :off_days,
			:duration_kind, :duration_days, :start_date,
			:created_at, :updated_at
		)
	`, toMedicationRow(m))
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE medications SET
			profile_id = :profile_id, name = :name, dosage = :dosage, notes = :notes,
			schedule_kind = :schedule_kind, times = :times, days = :days,
			on_days = :on_days, off_days = :off_days,
			duration_kind = :duration_kind, duration_days = :duration_days,
			start_date = :start_date, updated_at = :updated_at
		WHERE id = :id
	`, toMedicationRow(m))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	var row medicationRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM medications WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return medications.Medication{}, ErrNotFound
	}
	if err != nil {
		return medications.Medication{}, err
	}
	return row.toModel()
}

func (r *MedicationsRepo) ListByProfile(ctx context.Context, profileID string) ([]medications.Medication, error) {
	var rows []medicationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM medications WHERE profile_id = ? ORDER BY created_at ASC
	`, profileID)
	if err != nil {
		return nil, err
	}

	out := make([]medications.Medication, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func toMedicationRow(m medications.Medication) medicationRow {
	days := make([]string, 0, len(m.Schedule.Days))
	for _, d := range m.Schedule.Days {
		days = append(days, string(d))
	}
	return medicationRow{
		ID:           m.ID,
		ProfileID:    m.ProfileID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Notes:        m.Notes,
		ScheduleKind: string(m.Schedule.Kind),
		Times:        strings.Join(m.Schedule.Times, ","),
		Days:         strings.Join(days, ","),
		OnDays:       m.Schedule.On,
		OffDays:      m.Schedule.Off,
		DurationKind: string(m.Duration.Kind),
		DurationDays: m.Duration.Days,
		StartDate:    medications.FormatDate(m.StartDate),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (row medicationRow) toModel() (medications.Medication, error) {
	start, err := medications.ParseDate(row.StartDate)
	if err != nil {
		return medications.Medication{}, err
	}

	m := medications.Medication{
		ID:        row.ID,
		ProfileID: row.ProfileID,
		Name:      row.Name,
		Dosage:    row.Dosage,
		Notes:     row.Notes,
		Schedule: medications.Schedule{
			Kind: medications.ScheduleKind(row.ScheduleKind),
			On:   row.OnDays,
			Off:  row.OffDays,
		},
		Duration: medications.DurationWindow{
			Kind: medications.DurationKind(row.DurationKind),
			Days: row.DurationDays,
		},
		StartDate: start,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if row.Times != "" {
		m.Schedule.Times = strings.Split(row.Times, ",")
	}
	if row.Days != "" {
		for _, d := range strings.Split(row.Days, ",") {
			m.Schedule.Days = append(m.Schedule.Days, medications.Weekday(d))
		}
	}
	return m, nil
}
