package record

import (
	"context"
	"fmt"
	"time"

	"github.com/matheus3301/carelink/internal/bus"
)

// UpsertUser inserts or updates a user and publishes a record.users_changed
// event.
func (db *DB) UpsertUser(u *User) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO users (id, name, email, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Email, now)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	db.notify(bus.KindUsersChanged, u.ID)
	return nil
}

// ListUsers returns all users. Query failures are reported as
// ErrUnavailable, rows that fail to scan as ErrMalformed.
func (db *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, email FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", ErrMalformed, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read users: %v", ErrUnavailable, err)
	}
	return users, nil
}
