package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteSource reads the CREATE TABLE statements stored in sqlite_master
type SQLiteSource struct {
	Path   string
	DB     *sql.DB
	Logger *logrus.Logger
}

// NewSQLiteSource creates a new SQLite source
func NewSQLiteSource(path string, logger *logrus.Logger) *SQLiteSource {
	return &SQLiteSource{
		Path:   path,
		Logger: logger,
	}
}

// Connect opens the database file
func (ss *SQLiteSource) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite3", ss.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ss.DB = db
	ss.Logger.Debugf("Opened SQLite database %s", ss.Path)
	return nil
}

// Close closes the database connection
func (ss *SQLiteSource) Close() error {
	if ss.DB == nil {
		return nil
	}
	return ss.DB.Close()
}

// LoadDDL returns the stored statements in creation order
func (ss *SQLiteSource) LoadDDL(ctx context.Context) (string, error) {
	if ss.DB == nil {
		if err := ss.Connect(ctx); err != nil {
			return "", err
		}
	}

	rows, err := ss.DB.QueryContext(ctx, `
		SELECT sql
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		AND sql IS NOT NULL
		ORDER BY rowid
	`)
	if err != nil {
		return "", fmt.Errorf("failed to query sqlite_master: %w", err)
	}
	defer rows.Close()

	var statements []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("failed to scan table definition: %w", err)
		}
		statements = append(statements, strings.TrimRight(strings.TrimSpace(stmt), ";")+";")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate table definitions: %w", err)
	}

	ss.Logger.Infof("Loaded %d table definitions from SQLite", len(statements))
	return strings.Join(statements, "\n\n"), nil
}
