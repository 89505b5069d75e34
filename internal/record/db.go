package record

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matheus3301/carelink/internal/bus"
)

// DB is the SQLite-backed record store. Reads satisfy the Store interface;
// writes publish record.* events on the bus so the sync engine picks up
// external mutations without waiting for the next poll.
type DB struct {
	*sql.DB
	bus *bus.Bus
}

// Open creates a new SQLite connection with WAL mode and recommended
// pragmas. The bus may be nil, in which case writes publish nothing.
func Open(path string, b *bus.Bus) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{DB: db, bus: b}, nil
}

func (db *DB) notify(kind string, payload any) {
	if db.bus == nil {
		return
	}
	db.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
