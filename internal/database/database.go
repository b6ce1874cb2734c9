package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/mattn/go-sqlite3"
)

// Service stores finished-game results. This is record-keeping, not game
// state: games themselves live only in memory.
type Service struct {
	db     *sql.DB
	m      sync.Mutex
	driver string
}

const schema = `
	create table if not exists game_results (
		id text not null primary key,
		name text,
		winner text,
		players text,
		finished_at text
	);
	`

// New opens the results store. Supported drivers: "sqlite3" (file DSN) and
// "pgx" (postgres DSN).
func New(driver, dsn string) (*Service, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening results store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results schema: %w", err)
	}

	return &Service{db: db, driver: driver}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1..$n for the pgx driver.
func (s *Service) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// Insert records one finished game.
func (s *Service) Insert(result GameResult) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.Exec(s.rebind(
		"INSERT INTO game_results (id, name, winner, players, finished_at) VALUES (?, ?, ?, ?, ?)"),
		result.ID,
		result.Name,
		result.Winner,
		result.Players,
		result.FinishedAt)
	return err
}

// GetAll returns every recorded result, newest first.
func (s *Service) GetAll() ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query(
		"SELECT id, name, winner, players, finished_at FROM game_results ORDER BY finished_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetByPlayer returns every result a player took part in.
func (s *Service) GetByPlayer(username string) ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query(s.rebind(
		"SELECT id, name, winner, players, finished_at FROM game_results "+
			"WHERE winner = ? OR players = ? OR players LIKE ? OR players LIKE ? OR players LIKE ? "+
			"ORDER BY finished_at DESC"),
		username,
		username,
		username+",%",
		"%,"+username+",%",
		"%,"+username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

func scanResults(rows *sql.Rows) ([]GameResult, error) {
	var results []GameResult
	for rows.Next() {
		var result GameResult
		if err := rows.Scan(
			&result.ID,
			&result.Name,
			&result.Winner,
			&result.Players,
			&result.FinishedAt); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
