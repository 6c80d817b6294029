// Package persistence provides SQLite save slots for games.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/treasury"
)

// ErrSaveNotFound is returned when no save matches.
var ErrSaveNotFound = errors.New("save not found")

const dateLayout = time.RFC3339

// stampLayout is fixed width so wall-clock stamps sort as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ActiveSaveKey names the metadata entry holding the save a session continues
// from. SaveGame points it at the new save.
const ActiveSaveKey = "active_save"

// DB wraps a SQLite connection holding any number of saves.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		game_date TEXT NOT NULL,
		day INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		character_name TEXT NOT NULL,
		position TEXT NOT NULL,
		version INTEGER NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		save_id TEXT NOT NULL REFERENCES saves(id) ON DELETE CASCADE,
		jurisdiction TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		fiscal_year INTEGER NOT NULL,
		description TEXT NOT NULL,
		kind TEXT NOT NULL,
		cash_change TEXT NOT NULL,
		ending_balance TEXT NOT NULL,
		PRIMARY KEY (save_id, jurisdiction, seq)
	);

	CREATE TABLE IF NOT EXISTS indicator_points (
		save_id TEXT NOT NULL REFERENCES saves(id) ON DELETE CASCADE,
		jurisdiction TEXT NOT NULL,
		indicator TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (save_id, jurisdiction, indicator, seq)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		save_id TEXT NOT NULL REFERENCES saves(id) ON DELETE CASCADE,
		day INTEGER NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_updated ON saves(updated_at);
	CREATE INDEX IF NOT EXISTS idx_events_save ON events(save_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveInfo describes a save slot without loading it.
type SaveInfo struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"-" json:"created_at"`
	UpdatedAt time.Time `db:"-" json:"updated_at"`
	GameDate  time.Time `db:"-" json:"game_date"`
	Day       int       `db:"day" json:"day"`
	Seed      int64     `db:"seed" json:"seed"`
	Character string    `db:"character_name" json:"character"`
	Position  string    `db:"position" json:"position"`
}

type saveRow struct {
	SaveInfo
	CreatedAtText string `db:"created_at"`
	UpdatedAtText string `db:"updated_at"`
	GameDateText  string `db:"game_date"`
}

func (r saveRow) info() (SaveInfo, error) {
	var err error
	info := r.SaveInfo
	if info.CreatedAt, err = time.Parse(stampLayout, r.CreatedAtText); err != nil {
		return SaveInfo{}, fmt.Errorf("save %s created_at: %w", r.ID, err)
	}
	if info.UpdatedAt, err = time.Parse(stampLayout, r.UpdatedAtText); err != nil {
		return SaveInfo{}, fmt.Errorf("save %s updated_at: %w", r.ID, err)
	}
	if info.GameDate, err = time.Parse(dateLayout, r.GameDateText); err != nil {
		return SaveInfo{}, fmt.Errorf("save %s game_date: %w", r.ID, err)
	}
	return info, nil
}

// stripped returns the parts of snap stored as JSON. Ledger entries, indicator
// points, and events go to their own tables.
func stripped(snap engine.Snapshot) engine.Snapshot {
	out := snap
	out.Events = nil
	out.Treasury = make([]treasury.LedgerState, len(snap.Treasury))
	for i, st := range snap.Treasury {
		st.Entries = nil
		out.Treasury[i] = st
	}
	out.Economy.Series = make([]*economy.Series, len(snap.Economy.Series))
	for i, s := range snap.Economy.Series {
		cp := *s
		cp.GDP = &economy.Indicator{Name: s.GDP.Name}
		cp.Unemployment = &economy.Indicator{Name: s.Unemployment.Name}
		cp.Inflation = &economy.Indicator{Name: s.Inflation.Name}
		cp.InterestRate = &economy.Indicator{Name: s.InterestRate.Name}
		out.Economy.Series[i] = &cp
	}
	return out
}

// SaveGame writes snap as a new save slot in one transaction and returns its id.
func (db *DB) SaveGame(name string, snap engine.Snapshot) (string, error) {
	id := uuid.NewString()
	body, err := json.Marshal(stripped(snap))
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(stampLayout)
	_, err = tx.Exec(`INSERT INTO saves
		(id, name, created_at, updated_at, game_date, day, seed, character_name, position, version, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, now, now, snap.Date.Format(dateLayout), snap.Day, snap.Seed,
		snap.Character.Name, string(snap.Character.Position), snap.Version, string(body),
	)
	if err != nil {
		return "", fmt.Errorf("insert save: %w", err)
	}
	if err := writeRows(tx, id, snap); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("game saved", "id", id, "name", name, "day", snap.Day, "date", snap.Date.Format(time.DateOnly))
	return id, nil
}

// OverwriteSave replaces the contents of an existing save with snap, keeping
// its id and name.
func (db *DB) OverwriteSave(id string, snap engine.Snapshot) error {
	body, err := json.Marshal(stripped(snap))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE saves SET updated_at = ?, game_date = ?, day = ?, seed = ?,
		character_name = ?, position = ?, version = ?, snapshot_json = ? WHERE id = ?`,
		time.Now().UTC().Format(stampLayout), snap.Date.Format(dateLayout), snap.Day, snap.Seed,
		snap.Character.Name, string(snap.Character.Position), snap.Version, string(body), id,
	)
	if err != nil {
		return fmt.Errorf("update save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	for _, table := range []string{"ledger_entries", "indicator_points", "events"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE save_id = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := writeRows(tx, id, snap); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Debug("game checkpointed", "id", id, "day", snap.Day, "date", snap.Date.Format(time.DateOnly))
	return nil
}

// writeRows inserts the ledger entries, indicator points, and events of snap
// and marks id as the active save.
func writeRows(tx *sqlx.Tx, id string, snap engine.Snapshot) error {
	entryStmt, err := tx.Preparex(`INSERT INTO ledger_entries
		(save_id, jurisdiction, seq, date, fiscal_year, description, kind, cash_change, ending_balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer entryStmt.Close()
	for _, st := range snap.Treasury {
		for _, e := range st.Entries {
			_, err := entryStmt.Exec(id, st.Jurisdiction.String(), e.Seq, e.Date.Format(dateLayout), e.FiscalYear,
				e.Description, e.Kind.String(), e.CashChange.String(), e.EndingBalance.String())
			if err != nil {
				return fmt.Errorf("insert %s ledger entry %d: %w", st.Jurisdiction, e.Seq, err)
			}
		}
	}

	pointStmt, err := tx.Preparex(`INSERT INTO indicator_points
		(save_id, jurisdiction, indicator, seq, date, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer pointStmt.Close()
	for _, s := range snap.Economy.Series {
		for _, ind := range s.Indicators() {
			for i, p := range ind.History {
				if _, err := pointStmt.Exec(id, s.Jurisdiction.String(), ind.Name, i, p.Date.Format(dateLayout), p.Value); err != nil {
					return fmt.Errorf("insert %s %s point %d: %w", s.Jurisdiction, ind.Name, i, err)
				}
			}
		}
	}

	for _, e := range snap.Events {
		_, err := tx.Exec("INSERT INTO events (save_id, day, date, description, category) VALUES (?, ?, ?, ?, ?)",
			id, e.Day, e.Date.Format(dateLayout), e.Description, e.Category)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	_, err = tx.Exec("INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)", ActiveSaveKey, id)
	return err
}

type entryRow struct {
	Seq           int             `db:"seq"`
	Date          string          `db:"date"`
	FiscalYear    int             `db:"fiscal_year"`
	Description   string          `db:"description"`
	Kind          string          `db:"kind"`
	CashChange    decimal.Decimal `db:"cash_change"`
	EndingBalance decimal.Decimal `db:"ending_balance"`
}

func (r entryRow) entry() (treasury.Entry, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return treasury.Entry{}, err
	}
	var kind treasury.Kind
	if err := kind.UnmarshalText([]byte(r.Kind)); err != nil {
		return treasury.Entry{}, err
	}
	return treasury.Entry{
		Seq:           r.Seq,
		Date:          date,
		FiscalYear:    r.FiscalYear,
		Description:   r.Description,
		Kind:          kind,
		CashChange:    r.CashChange,
		EndingBalance: r.EndingBalance,
	}, nil
}

type pointRow struct {
	Indicator string  `db:"indicator"`
	Date      string  `db:"date"`
	Value     float64 `db:"value"`
}

// LoadGame reads a save back into a snapshot.
func (db *DB) LoadGame(id string) (engine.Snapshot, error) {
	var body string
	err := db.conn.Get(&body, "SELECT snapshot_json FROM saves WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	if err != nil {
		return engine.Snapshot{}, err
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode save %s: %w", id, err)
	}

	for i, st := range snap.Treasury {
		entries, err := db.ledger(id, st.Jurisdiction, -1)
		if err != nil {
			return engine.Snapshot{}, err
		}
		snap.Treasury[i].Entries = entries
	}

	for _, s := range snap.Economy.Series {
		var rows []pointRow
		err := db.conn.Select(&rows, `SELECT indicator, date, value FROM indicator_points
			WHERE save_id = ? AND jurisdiction = ? ORDER BY indicator, seq`, id, s.Jurisdiction.String())
		if err != nil {
			return engine.Snapshot{}, fmt.Errorf("load %s indicators: %w", s.Jurisdiction, err)
		}
		byName := make(map[string]*economy.Indicator)
		for _, ind := range s.Indicators() {
			byName[ind.Name] = ind
		}
		for _, r := range rows {
			ind, ok := byName[r.Indicator]
			if !ok {
				return engine.Snapshot{}, fmt.Errorf("load %s: unknown indicator %q", s.Jurisdiction, r.Indicator)
			}
			date, err := time.Parse(dateLayout, r.Date)
			if err != nil {
				return engine.Snapshot{}, err
			}
			ind.History = append(ind.History, economy.Point{Date: date, Value: r.Value})
		}
	}

	events, err := db.RecentEvents(id, -1)
	if err != nil {
		return engine.Snapshot{}, err
	}
	for i := len(events) - 1; i >= 0; i-- {
		snap.Events = append(snap.Events, events[i])
	}
	return snap, nil
}

// ledger returns entries oldest first, or the newest n newest first when n >= 0.
func (db *DB) ledger(id string, j economy.Jurisdiction, n int) ([]treasury.Entry, error) {
	var rows []entryRow
	var err error
	if n < 0 {
		err = db.conn.Select(&rows, `SELECT seq, date, fiscal_year, description, kind, cash_change, ending_balance
			FROM ledger_entries WHERE save_id = ? AND jurisdiction = ? ORDER BY seq`, id, j.String())
	} else {
		err = db.conn.Select(&rows, `SELECT seq, date, fiscal_year, description, kind, cash_change, ending_balance
			FROM ledger_entries WHERE save_id = ? AND jurisdiction = ? ORDER BY seq DESC LIMIT ?`, id, j.String(), n)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s ledger: %w", j, err)
	}
	entries := make([]treasury.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("load %s ledger entry %d: %w", j, r.Seq, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RecentLedger returns the newest n ledger entries of a save, newest first.
func (db *DB) RecentLedger(id string, j economy.Jurisdiction, n int) ([]treasury.Entry, error) {
	if n < 0 {
		n = 0
	}
	return db.ledger(id, j, n)
}

type eventRow struct {
	Day         int    `db:"day"`
	Date        string `db:"date"`
	Description string `db:"description"`
	Category    string `db:"category"`
}

// RecentEvents returns the most recent n events of a save, newest first. A
// negative n returns all of them.
func (db *DB) RecentEvents(id string, limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT day, date, description, category FROM events WHERE save_id = ? ORDER BY id DESC LIMIT ?",
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, err
		}
		events = append(events, engine.Event{Day: r.Day, Date: date, Description: r.Description, Category: r.Category})
	}
	return events, nil
}

// ListSaves returns every save, most recently written first.
func (db *DB) ListSaves() ([]SaveInfo, error) {
	var rows []saveRow
	err := db.conn.Select(&rows, `SELECT id, name, created_at, updated_at, game_date, day, seed, character_name, position
		FROM saves ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]SaveInfo, 0, len(rows))
	for _, r := range rows {
		info, err := r.info()
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// LatestSave returns the most recently written save.
func (db *DB) LatestSave() (SaveInfo, error) {
	var row saveRow
	err := db.conn.Get(&row, `SELECT id, name, created_at, updated_at, game_date, day, seed, character_name, position
		FROM saves ORDER BY updated_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveInfo{}, ErrSaveNotFound
	}
	if err != nil {
		return SaveInfo{}, err
	}
	return row.info()
}

// DeleteSave removes a save and everything stored with it.
func (db *DB) DeleteSave(id string) error {
	res, err := db.conn.Exec("DELETE FROM saves WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	_, err = db.conn.Exec("DELETE FROM game_meta WHERE key = ? AND value = ?", ActiveSaveKey, id)
	return err
}

// SaveMeta stores a key-value pair in game metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}
