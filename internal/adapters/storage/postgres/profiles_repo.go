package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-alert/internal/domain/profiles"
)

type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

func (r *ProfilesRepo) Create(ctx context.Context, p profiles.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, owner_user_id, name, relation, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		string(p.Relation),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return profiles.Profile{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, relation, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id)

	var p profiles.Profile
	var rel string
	if err := row.Scan(&p.ID, &p.OwnerUserID, &p.Name, &rel, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return profiles.Profile{}, ErrNotFound
		}
		return profiles.Profile{}, err
	}
	p.Relation = profiles.Relation(rel)
	return p, nil
}

func (r *ProfilesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]profiles.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, name, relation, created_at, updated_at
		FROM profiles
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profiles.Profile, 0)
	for rows.Next() {
		var p profiles.Profile
		var rel string
		if err := rows.Scan(&p.ID, &p.OwnerUserID, &p.Name, &rel, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Relation = profiles.Relation(rel)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProfilesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
