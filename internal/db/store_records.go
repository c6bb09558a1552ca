package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// Record is one row of the health_check table.
type Record struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const recordColumns = "id, message, created_at"

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var (
		r  Record
		ts timestamp
	)
	if err := row.Scan(&r.ID, &r.Message, &ts); err != nil {
		return Record{}, err
	}
	r.CreatedAt = ts.Time
	return r, nil
}

// ListRecords returns every record ordered by id. The slice is never nil.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM health_check ORDER BY id ASC")
	if err != nil {
		return nil, wrapErr("list records", err)
	}
	defer func() { _ = rows.Close() }()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, wrapErr("scan record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list records", err)
	}
	return records, nil
}

func (s *Store) CreateRecord(ctx context.Context, message string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO health_check (message) VALUES ($1) RETURNING "+recordColumns, message)
	r, err := scanRecord(row)
	if err != nil {
		return Record{}, wrapErr("create record", err)
	}
	return r, nil
}

// UpdateRecord replaces the message of record id. id and created_at are left
// untouched.
func (s *Store) UpdateRecord(ctx context.Context, id int64, message string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE health_check SET message = $1 WHERE id = $2 RETURNING "+recordColumns, message, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("update record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, wrapErr("update record", err)
	}
	return r, nil
}

// DeleteRecord removes record id and returns the row as it was.
func (s *Store) DeleteRecord(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"DELETE FROM health_check WHERE id = $1 RETURNING "+recordColumns, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("delete record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, wrapErr("delete record", err)
	}
	return r, nil
}

// Now asks the database server for its current time. It doubles as the
// connectivity probe.
func (s *Store) Now(ctx context.Context) (time.Time, error) {
	query := "SELECT NOW()"
	if s.dialect == DialectSQLite {
		query = "SELECT CURRENT_TIMESTAMP"
	}
	var ts timestamp
	if err := s.db.QueryRowContext(ctx, query).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	return ts.Time, nil
}
