// Package history keeps REPL input lines in a sqlite file so they survive
// between sessions.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS history (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	line TEXT NOT NULL,
	at   INTEGER NOT NULL
)`

// ErrOutOfRange is returned by GetLine for an index past the stored lines.
var ErrOutOfRange = errors.New("history index out of range")

// Store is a line history backed by a sqlite database. It satisfies the
// readline History interface. Lines are cached in memory once loaded.
type Store struct {
	db    *sql.DB
	lines []string
	limit int
}

// Open opens or creates the history database at path and loads at most
// limit of its most recent lines. A limit of 0 loads everything.
func Open(path string, limit int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	s := &Store{db: db, limit: limit}
	if s.lines, err = s.Last(limit); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Last returns up to n of the most recent lines, oldest first. n <= 0
// returns every line.
func (s *Store) Last(n int) ([]string, error) {
	query := `SELECT line FROM (SELECT id, line FROM history ORDER BY id DESC LIMIT ?) ORDER BY id`
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Write records a line. A line equal to the previous one is not stored
// again. It returns the number of lines held.
func (s *Store) Write(line string) (int, error) {
	if line == "" || (len(s.lines) > 0 && s.lines[len(s.lines)-1] == line) {
		return len(s.lines), nil
	}
	if _, err := s.db.Exec(`INSERT INTO history (line, at) VALUES (?, ?)`, line, time.Now().Unix()); err != nil {
		return len(s.lines), fmt.Errorf("history: insert: %w", err)
	}
	s.lines = append(s.lines, line)
	if s.limit > 0 && len(s.lines) > s.limit {
		s.lines = s.lines[len(s.lines)-s.limit:]
	}
	return len(s.lines), nil
}

func (s *Store) GetLine(i int) (string, error) {
	if i < 0 || i >= len(s.lines) {
		return "", ErrOutOfRange
	}
	return s.lines[i], nil
}

func (s *Store) Len() int { return len(s.lines) }

func (s *Store) Dump() interface{} { return s.lines }

// Clear deletes every stored line.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	s.lines = nil
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
