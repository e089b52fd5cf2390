// Package journal persists position entries and exits to SQLite for
// analysis and audit. It is the durable counterpart of the in-memory audit
// log; the engine treats write failures as non-fatal.
package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

// Journal records the position lifecycle in a SQLite database.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event      TEXT NOT NULL,            -- ENTRY | EXIT
		label      TEXT NOT NULL,
		mode       TEXT NOT NULL,            -- SIMULATED | LIVE
		order_id   TEXT,
		qty        INTEGER NOT NULL,
		entry      REAL NOT NULL,
		exit_price REAL,
		pnl        REAL,
		reason     TEXT,                     -- STOP_LOSS | TARGET | PANIC
		event_at   DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_label ON trades(label);
	CREATE INDEX IF NOT EXISTS idx_trades_event_at ON trades(event_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordEntry persists a position open event.
func (j *Journal) RecordEntry(pos model.Position) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO trades (event, label, mode, order_id, qty, entry, event_at)
		 VALUES ('ENTRY', ?, ?, ?, ?, ?, ?)`,
		pos.Label, string(pos.Mode), pos.OrderID, pos.Qty, pos.Entry,
		pos.OpenedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// RecordExit persists a position close event with its realized P&L.
func (j *Journal) RecordExit(pos model.Position, reason model.CloseReason) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO trades (event, label, mode, order_id, qty, entry, exit_price, pnl, reason, event_at)
		 VALUES ('EXIT', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pos.Label, string(pos.Mode), pos.OrderID, pos.Qty, pos.Entry,
		pos.Current, pos.PnL, string(reason),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// TradeRecord is one row from the trades table.
type TradeRecord struct {
	ID        int64   `json:"id"`
	Event     string  `json:"event"`
	Label     string  `json:"label"`
	Mode      string  `json:"mode"`
	OrderID   string  `json:"order_id"`
	Qty       int64   `json:"qty"`
	Entry     float64 `json:"entry"`
	ExitPrice float64 `json:"exit_price"`
	PnL       float64 `json:"pnl"`
	Reason    string  `json:"reason"`
	EventAt   string  `json:"event_at"`
}

// Recent returns the last limit events, newest first.
func (j *Journal) Recent(limit int) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, event, label, mode, COALESCE(order_id, ''), qty, entry,
		        COALESCE(exit_price, 0), COALESCE(pnl, 0), COALESCE(reason, ''), event_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.Event, &t.Label, &t.Mode, &t.OrderID, &t.Qty,
			&t.Entry, &t.ExitPrice, &t.PnL, &t.Reason, &t.EventAt); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
