package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

const driverName = "sqlite3_questioner"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate value")
	ErrUnknownCategory = errors.New("category does not exist")
)

var registerOnce sync.Once

// registerDriver installs a sqlite3 driver whose connections enforce foreign
// keys and expose the qrank() relevance function used by search.
func registerDriver() {
	registerOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if _, err := conn.Exec("PRAGMA foreign_keys = ON", nil); err != nil {
					return err
				}
				if _, err := conn.Exec("PRAGMA busy_timeout = 5000", nil); err != nil {
					return err
				}
				return conn.RegisterFunc("qrank", rankMatchinfo, true)
			},
		})
	})
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	if strings.TrimSpace(dataSourceName) == "" {
		dataSourceName = "questioner.db"
	}
	if err := ensureDir(dataSourceName); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	registerDriver()
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one shared connection serializes requests.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dataSourceName string) error {
	if dataSourceName == ":memory:" || strings.HasPrefix(dataSourceName, "file:") {
		return nil
	}
	dir := filepath.Dir(dataSourceName)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// Timestamps are unix milliseconds so updated_at can be compared and bumped in SQL.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER REFERENCES categories (id) ON DELETE SET NULL,
			question_number TEXT,
			question_text TEXT NOT NULL,
			answer_text TEXT NOT NULL,
			keywords TEXT,
			created_at INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000),
			updated_at INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions (category_id);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS questions_fts USING fts4(
			question_text,
			answer_text,
			keywords,
			tokenize=porter
		);`,
		// The FTS shadow is maintained inside the writing statement, never by application code.
		`CREATE TRIGGER IF NOT EXISTS questions_fts_ai AFTER INSERT ON questions BEGIN
			INSERT INTO questions_fts (docid, question_text, answer_text, keywords)
			VALUES (new.id, new.question_text, new.answer_text, new.keywords);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS questions_fts_ad AFTER DELETE ON questions BEGIN
			DELETE FROM questions_fts WHERE docid = old.id;
		END;`,
		`CREATE TRIGGER IF NOT EXISTS questions_fts_au AFTER UPDATE ON questions BEGIN
			UPDATE questions_fts
			SET question_text = new.question_text, answer_text = new.answer_text, keywords = new.keywords
			WHERE docid = old.id;
		END;`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RebuildSearchIndex repopulates questions_fts from the questions table.
func (s *SQLiteStore) RebuildSearchIndex(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin index rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions_fts`); err != nil {
		return 0, fmt.Errorf("failed to clear search index: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO questions_fts (docid, question_text, answer_text, keywords)
		 SELECT id, question_text, answer_text, keywords FROM questions`)
	if err != nil {
		return 0, fmt.Errorf("failed to repopulate search index: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit index rebuild: %w", err)
	}
	return n, nil
}

// classify maps driver constraint failures onto the package sentinels.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return ErrUnknownCategory
		}
	}
	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
