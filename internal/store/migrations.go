package store

import (
	"database/sql"
	"fmt"

	"testlens/internal/logging"
)

// migration adds a single column to an existing table. Additive-only so old
// databases keep working without a rebuild.
type migration struct {
	table  string
	column string
	def    string
}

var pendingMigrations = []migration{
	// Framework column added after initial schema shipped.
	{"snapshots", "framework", "TEXT DEFAULT ''"},
}

func runMigrations(db *sql.DB) error {
	for _, m := range pendingMigrations {
		if !tableExists(db, m.table) {
			continue
		}
		if columnExists(db, m.table, m.column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.def)
		if _, err := db.Exec(query); err != nil {
			// The column may already exist in a different form; keep going.
			logging.Get(logging.CategoryStore).Warn("migration failed for %s.%s: %v", m.table, m.column, err)
			continue
		}
		logging.StoreDebug("migration applied: %s.%s", m.table, m.column)
	}
	return nil
}

func tableExists(db *sql.DB, table string) bool {
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	return err == nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
