/*
Package sqlite exports a closed year into a standalone SQLite file.

PURPOSE:
  The live store is the JSON document; it is rewritten wholesale and
  holds only what the running event needs. After a season ends, staff
  want the year's records in something a reporting tool can query, so
  ArchiveYear writes a self-contained .db file with one table per
  entity family.

NOT THE LIVE STORE:
  Nothing reads these files back into the engine. The archive is a
  one-way export; deleting it loses nothing the JSON document still
  has.

SCHEMA:
  One table per collection, flat columns, no foreign keys enforced.
  Timestamps are RFC3339 text, announcement payloads are JSON text.

USAGE:
  err := sqlite.ArchiveYear("./archives/2026.db", extract)
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pledgewall/pledge-engine/pledge"
)

const schema = `
CREATE TABLE IF NOT EXISTS years (
	id INTEGER PRIMARY KEY,
	label TEXT NOT NULL,
	is_current BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	logo_path TEXT,
	year_id INTEGER NOT NULL,
	PRIMARY KEY (id, year_id)
);

CREATE TABLE IF NOT EXISTS persons (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	group_id TEXT,
	is_premium BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS commitments (
	id INTEGER PRIMARY KEY,
	person_id TEXT NOT NULL,
	group_id TEXT NOT NULL,
	target REAL NOT NULL,
	is_premium BOOLEAN NOT NULL,
	created_at TEXT NOT NULL,
	year_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_days (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	year_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	person_id TEXT NOT NULL,
	day_id INTEGER NOT NULL,
	amount REAL NOT NULL,
	PRIMARY KEY (person_id, day_id)
);

CREATE TABLE IF NOT EXISTS announcements (
	id INTEGER PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	text TEXT NOT NULL,
	signature TEXT NOT NULL,
	created_at TEXT NOT NULL,
	expires_at TEXT,
	payload_json TEXT NOT NULL,
	year_id INTEGER NOT NULL
);
`

// ArchiveYear writes the extract into the SQLite file at path, creating
// the schema first. Existing rows with the same keys are replaced, so
// re-archiving the same year is safe.
func ArchiveYear(path string, ex pledge.YearExtract) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeExtract(tx, ex); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

func writeExtract(tx *sql.Tx, ex pledge.YearExtract) error {
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO years (id, label, is_current) VALUES (?, ?, ?)`,
		ex.Year.ID, ex.Year.Label, ex.Year.IsCurrent,
	); err != nil {
		return fmt.Errorf("archive year: %w", err)
	}

	for _, g := range ex.Groups {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO groups (id, name, logo_path, year_id) VALUES (?, ?, ?, ?)`,
			g.ID, g.Name, g.LogoPath, g.YearID,
		); err != nil {
			return fmt.Errorf("archive group %s: %w", g.ID, err)
		}
	}

	for _, p := range ex.Persons {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO persons (id, full_name, group_id, is_premium) VALUES (?, ?, ?, ?)`,
			p.ID, p.FullName, p.GroupID, p.IsPremium,
		); err != nil {
			return fmt.Errorf("archive person %s: %w", p.ID, err)
		}
	}

	for _, c := range ex.Commitments {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO commitments (id, person_id, group_id, target, is_premium, created_at, year_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PersonID, c.GroupID, c.Target, c.IsPremium, c.CreatedAt.Format(time.RFC3339), c.YearID,
		); err != nil {
			return fmt.Errorf("archive commitment %d: %w", c.ID, err)
		}
	}

	for _, d := range ex.CollectionDays {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO collection_days (id, name, year_id) VALUES (?, ?, ?)`,
			d.ID, d.Name, d.YearID,
		); err != nil {
			return fmt.Errorf("archive collection day %d: %w", d.ID, err)
		}
	}

	for _, c := range ex.Collections {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO collections (person_id, day_id, amount) VALUES (?, ?, ?)`,
			c.PersonID, c.DayID, c.Amount,
		); err != nil {
			return fmt.Errorf("archive collection %s/%d: %w", c.PersonID, c.DayID, err)
		}
	}

	for _, a := range ex.Announcements {
		payload, err := json.Marshal(a.Payload)
		if err != nil {
			return fmt.Errorf("encode announcement %d payload: %w", a.ID, err)
		}
		var expires *string
		if a.ExpiresAt != nil {
			v := a.ExpiresAt.Format(time.RFC3339)
			expires = &v
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO announcements (id, type, title, text, signature, created_at, expires_at, payload_json, year_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, string(a.Type), a.Title, a.Text, a.Signature,
			a.CreatedAt.Format(time.RFC3339), expires, string(payload), a.YearID,
		); err != nil {
			return fmt.Errorf("archive announcement %d: %w", a.ID, err)
		}
	}

	return nil
}
