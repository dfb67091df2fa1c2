package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// DefaultPostgresSchema is read when no schema is configured
const DefaultPostgresSchema = "public"

// PostgresSource rebuilds CREATE TABLE statements from the PostgreSQL
// catalog, which has no SHOW CREATE TABLE equivalent.
type PostgresSource struct {
	ConnString string
	Schema     string
	Conn       *pgx.Conn
	Logger     *logrus.Logger
}

// pgColumn is one catalog row, ordered by table then column position
type pgColumn struct {
	Table   string
	Name    string
	Type    string
	NotNull bool
}

// NewPostgresSource creates a new PostgreSQL source
func NewPostgresSource(connString string, logger *logrus.Logger) *PostgresSource {
	return &PostgresSource{
		ConnString: connString,
		Schema:     DefaultPostgresSchema,
		Logger:     logger,
	}
}

// Connect establishes a connection to the database
func (ps *PostgresSource) Connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, ps.ConnString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ps.Conn = conn
	ps.Logger.Info("Connected to PostgreSQL database")
	return nil
}

// Close closes the database connection
func (ps *PostgresSource) Close() error {
	if ps.Conn == nil {
		return nil
	}
	return ps.Conn.Close(context.Background())
}

// LoadDDL returns one synthesized CREATE TABLE statement per table of the schema
func (ps *PostgresSource) LoadDDL(ctx context.Context) (string, error) {
	if ps.Conn == nil {
		if err := ps.Connect(ctx); err != nil {
			return "", err
		}
	}

	rows, err := ps.Conn.Query(ctx, `
		SELECT c.relname, a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid
		WHERE c.relkind IN ('r', 'p')
		AND n.nspname = $1
		AND a.attnum > 0
		AND NOT a.attisdropped
		ORDER BY c.oid, a.attnum
	`, ps.Schema)
	if err != nil {
		return "", fmt.Errorf("failed to query catalog: %w", err)
	}

	columns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pgColumn, error) {
		var col pgColumn
		err := row.Scan(&col.Table, &col.Name, &col.Type, &col.NotNull)
		return col, err
	})
	if err != nil {
		return "", fmt.Errorf("failed to read catalog rows: %w", err)
	}

	ddl := buildCreateStatements(columns)
	ps.Logger.Infof("Loaded %d columns from PostgreSQL schema %s", len(columns), ps.Schema)
	return ddl, nil
}

// buildCreateStatements groups consecutive catalog rows by table
func buildCreateStatements(columns []pgColumn) string {
	var sb strings.Builder
	for i, col := range columns {
		first := i == 0 || columns[i-1].Table != col.Table
		if first {
			if i > 0 {
				sb.WriteString("\n);\n\n")
			}
			fmt.Fprintf(&sb, "CREATE TABLE %s (\n", col.Table)
		} else {
			sb.WriteString(",\n")
		}

		fmt.Fprintf(&sb, "    %s %s", col.Name, col.Type)
		if col.NotNull {
			sb.WriteString(" NOT NULL")
		}
	}
	if len(columns) > 0 {
		sb.WriteString("\n);\n")
	}
	return sb.String()
}
