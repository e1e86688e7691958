package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type SQLite struct {
	path string
	conn *sql.DB
}

func NewSQLite(path string) *SQLite {
	if path == "" {
		path = MemoryPath
	}
	return &SQLite{
		path: path,
		conn: nil,
	}
}

func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) InitDb() error {
	if s.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}

	var err error
	s.conn, err = sql.Open("sqlite3", s.path)
	if err != nil {
		return err
	}
	// A single connection keeps an in-memory database alive and serialises
	// writers.
	s.conn.SetMaxOpenConns(1)

	res, err := s.conn.Exec(`
CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    path TEXT,
    content BLOB,
    compression TEXT,
    modified_at DATETIME,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		return fmt.Errorf("create drafts table: %w", err)
	}

	dbLogger.Info().Any("db_result", res).Str("path", s.path).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) Query(query string, args ...interface{}) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.Query(query, args...)
}

func (s *SQLite) Exec(query string, args ...interface{}) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.Exec(query, args...)
}
