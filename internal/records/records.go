package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vancomm/minesweeper/internal/mines"
)

const tableName = "best_time"

// Record is one won game.
type Record struct {
	ID        int64
	Params    mines.Params
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Store keeps the local best times in a sqlite file.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open records db %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_rows INTEGER NOT NULL,
		board_cols INTEGER NOT NULL,
		mine_count INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS ` + tableName + `_params_idx
		ON ` + tableName + ` (board_rows, board_cols, mine_count, elapsed_ms);`

	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a won game with the given params.
func (s *Store) Save(ctx context.Context, params mines.Params, elapsed time.Duration) error {
	const insertSQL = `
	INSERT INTO ` + tableName + ` (board_rows, board_cols, mine_count, elapsed_ms, created_at)
	VALUES (?, ?, ?, ?, ?);`

	_, err := s.db.ExecContext(
		ctx, insertSQL,
		params.Rows, params.Cols, params.Mines, elapsed.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record for %s: %w", params.Seed(), err)
	}
	return nil
}

// Best returns the fastest recorded win for params. ok is false when there
// is none yet.
func (s *Store) Best(ctx context.Context, params mines.Params) (best time.Duration, ok bool, err error) {
	const selectSQL = `
	SELECT elapsed_ms FROM ` + tableName + `
	WHERE board_rows = ? AND board_cols = ? AND mine_count = ?
	ORDER BY elapsed_ms LIMIT 1;`

	var ms int64
	err = s.db.QueryRowContext(ctx, selectSQL, params.Rows, params.Cols, params.Mines).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query best time: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// Top lists up to limit wins for params, fastest first.
func (s *Store) Top(ctx context.Context, params mines.Params, limit int) ([]Record, error) {
	const selectSQL = `
	SELECT id, elapsed_ms, created_at FROM ` + tableName + `
	WHERE board_rows = ? AND board_cols = ? AND mine_count = ?
	ORDER BY elapsed_ms, id LIMIT ?;`

	rows, err := s.db.QueryContext(ctx, selectSQL, params.Rows, params.Cols, params.Mines, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r := Record{Params: params}
		var ms int64
		if err := rows.Scan(&r.ID, &ms, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Elapsed = time.Duration(ms) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return records, nil
}
