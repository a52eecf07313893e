package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"roomfinder/internal/domain/rooms"
)

// RoomCatalog reads room metadata from a local SQLite file.
type RoomCatalog struct {
	db *sql.DB
}

func Open(path string) (*RoomCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	c := &RoomCatalog{db: db}
	if err := c.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *RoomCatalog) Close() error { return c.db.Close() }

func (c *RoomCatalog) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *RoomCatalog) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS rooms (
  room_no TEXT PRIMARY KEY COLLATE NOCASE,
  room_type_id TEXT NOT NULL,
  room_type_name TEXT NOT NULL,
  max_capacity INTEGER NOT NULL,
  price_weekdays INTEGER NOT NULL,
  price_weekends INTEGER NOT NULL,
  price_festival INTEGER NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := c.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("sqlite: create rooms: %w", err)
	}
	return nil
}

func (c *RoomCatalog) List(ctx context.Context) ([]rooms.RoomSpec, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT room_no, room_type_id, room_type_name, max_capacity,
       price_weekdays, price_weekends, price_festival, image
FROM rooms
ORDER BY position, room_no`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list rooms: %w", err)
	}
	defer rows.Close()

	var specs []rooms.RoomSpec
	for rows.Next() {
		var s rooms.RoomSpec
		if err := rows.Scan(&s.RoomNo, &s.TypeID, &s.TypeName, &s.Capacity,
			&s.Rates.Weekday, &s.Rates.Weekend, &s.Rates.Holiday, &s.Image); err != nil {
			return nil, fmt.Errorf("sqlite: scan room: %w", err)
		}
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list rooms: %w", err)
	}
	if err := rooms.Validate(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// Upsert writes specs in one transaction, keeping their slice order as position.
func (c *RoomCatalog) Upsert(ctx context.Context, specs []rooms.RoomSpec) error {
	if err := rooms.Validate(specs); err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO rooms (room_no, room_type_id, room_type_name, max_capacity,
                   price_weekdays, price_weekends, price_festival, image, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(room_no) DO UPDATE SET
  room_type_id = excluded.room_type_id,
  room_type_name = excluded.room_type_name,
  max_capacity = excluded.max_capacity,
  price_weekdays = excluded.price_weekdays,
  price_weekends = excluded.price_weekends,
  price_festival = excluded.price_festival,
  image = excluded.image,
  position = excluded.position`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range specs {
		if _, err := stmt.ExecContext(ctx, s.RoomNo, s.TypeID, s.TypeName, s.Capacity,
			s.Rates.Weekday, s.Rates.Weekend, s.Rates.Holiday, s.Image, i); err != nil {
			return fmt.Errorf("sqlite: upsert room %s: %w", s.RoomNo, err)
		}
	}
	return tx.Commit()
}

var _ rooms.Catalog = (*RoomCatalog)(nil)
