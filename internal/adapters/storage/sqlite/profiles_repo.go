package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"med-alert/internal/domain/profiles"
)

type ProfilesRepo struct {
	db *sqlx.DB
}

func NewProfilesRepo(db *sqlx.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

type profileRow struct {
	ID          string    `db:"id"`
	OwnerUserID string    `db:"owner_user_id"`
	Name        string    `db:"name"`
	Relation    string    `db:"relation"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *ProfilesRepo) Create(ctx context.Context, p profiles.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (id, owner_user_id, name, relation, created_at, updated_at)
		VALUES (:id, :owner_user_id, :name, :relation, :created_at, :updated_at)
	`, profileRow{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Relation:    string(p.Relation),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	return err
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM profiles WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return profiles.Profile{}, ErrNotFound
	}
	if err != nil {
		return profiles.Profile{}, err
	}
	return row.toModel(), nil
}

func (r *ProfilesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]profiles.Profile, error) {
	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM profiles WHERE owner_user_id = ? ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}

	out := make([]profiles.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *ProfilesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (row profileRow) toModel() profiles.Profile {
	return profiles.Profile{
		ID:          row.ID,
		OwnerUserID: row.OwnerUserID,
		Name:        row.Name,
		Relation:    profiles.Relation(row.Relation),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
