// This file is part of ifsession.
//
// ifsession is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ifsession is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ifsession.  If not, see <https://www.gnu.org/licenses/>.

package savedb

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Sentinal error patterns.
const (
	// a save with the name already exists and overwriting was not requested
	ExistingSave = "savedb: save %q already exists for %s"

	// there is no save with the name
	NotFound = "savedb: no save %q for %s"
)

// Kind of save.
type Kind string

// List of valid Kind values.
const (
	Normal   Kind = "Normal"
	Autosave Kind = "Autosave"
)

// Save is a single entry in the catalogue.
type Save struct {
	ID        string
	Identity  string
	Name      string
	Kind      Kind
	SavedWhen time.Time
	Turn      uint32
	Data      []byte

	// ID of the save that the session was restored from before this save was
	// made. empty if there was no such save
	ParentID string
}

func (s Save) String() string {
	return fmt.Sprintf("%s (%s, turn %d, %s)", s.Name, s.Kind, s.Turn, s.SavedWhen.Local().Format(time.DateTime))
}

// text format for saved_when. fixed width so that the column sorts correctly
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DB is the save catalogue.
type DB struct {
	db *sql.DB

	crit    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open the database at path. The database is created if it does not exist.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, curated.Errorf("savedb: %v", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, curated.Errorf("savedb: %v", err)
	}

	sdb := &DB{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := sdb.migrate(); err != nil {
		db.Close()
		return nil, curated.Errorf("savedb: migrate: %v", err)
	}

	return sdb, nil
}

func (sdb *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id         TEXT PRIMARY KEY,
		identity   TEXT NOT NULL,
		name       TEXT NOT NULL,
		kind       TEXT NOT NULL DEFAULT 'Normal',
		saved_when TEXT NOT NULL,
		turn       INTEGER NOT NULL DEFAULT 0,
		data       BLOB NOT NULL,
		parent_id  TEXT NOT NULL DEFAULT '',
		UNIQUE (identity, name)
	);
	CREATE INDEX IF NOT EXISTS idx_saves_identity ON saves(identity, saved_when DESC);

	CREATE TABLE IF NOT EXISTS play_time (
		identity TEXT PRIMARY KEY,
		millis   INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := sdb.db.Exec(schema)
	return err
}

func (sdb *DB) newID(t time.Time) string {
	sdb.crit.Lock()
	defer sdb.crit.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), sdb.entropy).String()
}

// Close the database.
func (sdb *DB) Close() error {
	return sdb.db.Close()
}

// Store the save and return its ID. The ID, and for autosaves the Name,
// fields of the save argument are ignored. If overwrite is true an existing
// save with the same name is replaced.
//
// If a save of the same kind with the same data and parent already exists
// then the ID of that save is returned and nothing is stored.
func (sdb *DB) Store(ctx context.Context, save Save, overwrite bool) (string, error) {
	if save.Kind == "" {
		save.Kind = Normal
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", curated.Errorf("savedb: %v", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, data FROM saves WHERE identity = ? AND kind = ? AND parent_id = ? ORDER BY saved_when DESC`,
		save.Identity, string(save.Kind), save.ParentID)
	if err != nil {
		return "", curated.Errorf("savedb: %v", err)
	}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			rows.Close()
			return "", curated.Errorf("savedb: %v", err)
		}
		if bytes.Equal(data, save.Data) {
			rows.Close()
			logger.Logf(logger.Allow, "savedb", "%s: duplicate of %s", save.Name, id)
			return id, nil
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", curated.Errorf("savedb: %v", err)
	}

	when := save.SavedWhen
	if when.IsZero() {
		when = time.Now()
	}
	id := sdb.newID(when)

	name := save.Name
	switch save.Kind {
	case Autosave:
		// the name of an autosave is not important but it must be unique
		name = fmt.Sprintf("%s - %s", save.Name, id)
	default:
		if overwrite {
			_, err = tx.ExecContext(ctx, `DELETE FROM saves WHERE identity = ? AND name = ?`, save.Identity, name)
			if err != nil {
				return "", curated.Errorf("savedb: %v", err)
			}
		} else {
			var n int
			err = tx.QueryRowContext(ctx, `SELECT count(id) FROM saves WHERE identity = ? AND name = ?`, save.Identity, name).Scan(&n)
			if err != nil {
				return "", curated.Errorf("savedb: %v", err)
			}
			if n > 0 {
				return "", curated.Errorf(ExistingSave, name, save.Identity)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO saves (id, identity, name, kind, saved_when, turn, data, parent_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, save.Identity, name, string(save.Kind), when.UTC().Format(timeFormat), int64(save.Turn), save.Data, save.ParentID)
	if err != nil {
		return "", curated.Errorf("savedb: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return "", curated.Errorf("savedb: %v", err)
	}

	return id, nil
}

const columns = `id, identity, name, kind, saved_when, turn, data, parent_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSave(row scanner) (Save, error) {
	var s Save
	var kind, when string
	var turn int64
	if err := row.Scan(&s.ID, &s.Identity, &s.Name, &kind, &when, &turn, &s.Data, &s.ParentID); err != nil {
		return Save{}, err
	}
	s.Kind = Kind(kind)
	s.Turn = uint32(turn)
	t, err := time.Parse(timeFormat, when)
	if err != nil {
		return Save{}, err
	}
	s.SavedWhen = t
	return s, nil
}

// Get returns the save with the name.
func (sdb *DB) Get(ctx context.Context, identity string, name string) (Save, error) {
	row := sdb.db.QueryRowContext(ctx, `SELECT `+columns+` FROM saves WHERE identity = ? AND name = ?`, identity, name)
	s, err := scanSave(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Save{}, curated.Errorf(NotFound, name, identity)
		}
		return Save{}, curated.Errorf("savedb: %v", err)
	}
	return s, nil
}

// List returns all saves for the story, most recent first.
func (sdb *DB) List(ctx context.Context, identity string) ([]Save, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT `+columns+` FROM saves WHERE identity = ? ORDER BY saved_when DESC, id DESC`, identity)
	if err != nil {
		return nil, curated.Errorf("savedb: %v", err)
	}
	defer rows.Close()

	var saves []Save
	for rows.Next() {
		s, err := scanSave(rows)
		if err != nil {
			return nil, curated.Errorf("savedb: %v", err)
		}
		saves = append(saves, s)
	}
	if err := rows.Err(); err != nil {
		return nil, curated.Errorf("savedb: %v", err)
	}

	return saves, nil
}

// Delete the save with the ID.
func (sdb *DB) Delete(ctx context.Context, id string) error {
	_, err := sdb.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id)
	if err != nil {
		return curated.Errorf("savedb: %v", err)
	}
	return nil
}

// CountAutosaves returns the number of autosaves for the story.
func (sdb *DB) CountAutosaves(ctx context.Context, identity string) (int, error) {
	var n int
	err := sdb.db.QueryRowContext(ctx, `SELECT count(id) FROM saves WHERE identity = ? AND kind = ?`, identity, string(Autosave)).Scan(&n)
	if err != nil {
		return 0, curated.Errorf("savedb: %v", err)
	}
	return n, nil
}

// DeleteAutosaves removes all autosaves for the story.
func (sdb *DB) DeleteAutosaves(ctx context.Context, identity string) error {
	_, err := sdb.db.ExecContext(ctx, `DELETE FROM saves WHERE identity = ? AND kind = ?`, identity, string(Autosave))
	if err != nil {
		return curated.Errorf("savedb: %v", err)
	}
	return nil
}

// AddPlayTime adds to the total play time of the story.
func (sdb *DB) AddPlayTime(ctx context.Context, identity string, d time.Duration) error {
	_, err := sdb.db.ExecContext(ctx,
		`INSERT INTO play_time (identity, millis) VALUES (?, ?)
		ON CONFLICT(identity) DO UPDATE SET millis = millis + excluded.millis`,
		identity, d.Milliseconds())
	if err != nil {
		return curated.Errorf("savedb: %v", err)
	}
	return nil
}

// PlayTime returns the total play time of the story.
func (sdb *DB) PlayTime(ctx context.Context, identity string) (time.Duration, error) {
	var millis int64
	err := sdb.db.QueryRowContext(ctx, `SELECT millis FROM play_time WHERE identity = ?`, identity).Scan(&millis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, curated.Errorf("savedb: %v", err)
	}
	return time.Duration(millis) * time.Millisecond, nil
}
