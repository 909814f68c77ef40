package core

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/todo-manager/v2/internal/auth"
)

// Database persists the session token in a single-row sqlite table. It
// implements auth.Store.
type Database struct {
	dbFile string
	conn   *sql.DB
}

var _ auth.Store = (*Database)(nil)

func NewDatabase(dataDir, dbFile string) (*Database, error) {
	if dbFile == "" {
		dbFile = "todo_manager.db"
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dataDir, err)
	}
	return &Database{
		dbFile: filepath.Join(dataDir, dbFile),
	}, nil
}

func (db *Database) Connect() error {
	conn, err := sql.Open("sqlite3", db.dbFile)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db.conn = conn

	return db.initDatabase()
}

func (db *Database) initDatabase() error {
	query := `
    CREATE TABLE IF NOT EXISTS session (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        token TEXT NOT NULL,
        saved_at TEXT NOT NULL
    )`
	_, err := db.conn.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

func (db *Database) SaveToken(token string) error {
	query := `
    INSERT INTO session (id, token, saved_at) VALUES (1, ?, ?)
    ON CONFLICT(id) DO UPDATE SET token = excluded.token, saved_at = excluded.saved_at`
	_, err := db.conn.Exec(query, token, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadToken returns "" when no session was saved.
func (db *Database) LoadToken() (string, error) {
	var token string
	err := db.conn.QueryRow("SELECT token FROM session WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return token, nil
}

func (db *Database) ClearToken() error {
	_, err := db.conn.Exec("DELETE FROM session")
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (db *Database) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
