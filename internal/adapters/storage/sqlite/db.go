package sqlite

import (
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registra el driver
)

var (
	ErrNotFound = errors.New("not found")
)

// schema se aplica al abrir: despliegues embebidos de un solo usuario no
// tienen pipeline de migraciones, el archivo se bootstrapea solo.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	owner_user_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	relation      TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS medications (
	id            TEXT PRIMARY KEY,
	profile_id    TEXT NOT NULL,
	name          TEXT NOT NULL,
	dosage        TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	schedule_kind TEXT NOT NULL,
	times         TEXT NOT NULL,
	days          TEXT NOT NULL DEFAULT '',
	on_days       INTEGER NOT NULL DEFAULT 0,
	off_days      INTEGER NOT NULL DEFAULT 0,
	duration_kind TEXT NOT NULL,
	duration_days INTEGER NOT NULL DEFAULT 0,
	start_date    TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dose_history (
	id             TEXT PRIMARY KEY,
	medication_id  TEXT NOT NULL,
	profile_id     TEXT NOT NULL,
	dose_date      TEXT NOT NULL,
	scheduled_time TEXT NOT NULL,
	outcome        TEXT NOT NULL,
	recorded_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_medications_profile ON medications(profile_id);
CREATE INDEX IF NOT EXISTS idx_history_slot ON dose_history(medication_id, dose_date, scheduled_time);
CREATE INDEX IF NOT EXISTS idx_history_profile ON dose_history(profile_id);
`

// Open abre (o crea) la base SQLite y aplica el esquema.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
