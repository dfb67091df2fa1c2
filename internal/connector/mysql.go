package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// MySQLSource reads CREATE TABLE statements from a live MySQL database
type MySQLSource struct {
	DSN    string
	DB     *sql.DB
	Logger *logrus.Logger
}

// NewMySQLSource creates a new MySQL source for a go-sql-driver DSN
// (user:password@tcp(host:port)/database)
func NewMySQLSource(dsn string, logger *logrus.Logger) *MySQLSource {
	return &MySQLSource{
		DSN:    dsn,
		Logger: logger,
	}
}

// Connect establishes a connection to the MySQL database
func (ms *MySQLSource) Connect(ctx context.Context) error {
	if ms.DSN == "" {
		return fmt.Errorf("MySQL DSN must not be empty")
	}

	db, err := sql.Open("mysql", ms.DSN)
	if err != nil {
		ms.Logger.Errorf("Error connecting to MySQL database: %v", err)
		return err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		ms.Logger.Errorf("Error pinging MySQL database: %v", err)
		db.Close()
		return err
	}

	ms.DB = db
	ms.Logger.Info("Connected to MySQL database")
	return nil
}

// Close closes the database connection
func (ms *MySQLSource) Close() error {
	if ms.DB == nil {
		return nil
	}
	err := ms.DB.Close()
	if err != nil {
		ms.Logger.Errorf("Error closing database connection: %v", err)
	} else {
		ms.Logger.Debug("MySQL connection closed")
	}
	return err
}

// LoadDDL returns one CREATE TABLE statement per base table, terminated with ";"
func (ms *MySQLSource) LoadDDL(ctx context.Context) (string, error) {
	tables, err := ms.ExecuteQuery(ctx, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}

	var statements []string
	for _, row := range tables {
		name := tableNameFromRow(row)
		if name == "" {
			continue
		}

		result, err := ms.ExecuteQuery(ctx, fmt.Sprintf("SHOW CREATE TABLE `%s`", strings.ReplaceAll(name, "`", "``")))
		if err != nil {
			return "", fmt.Errorf("failed to read definition of %s: %w", name, err)
		}
		if len(result) == 0 {
			ms.Logger.Warningf("No definition returned for table %s", name)
			continue
		}

		statements = append(statements, normalizeMySQLDDL(fmt.Sprint(result[0]["Create Table"])))
	}

	ms.Logger.Infof("Loaded %d table definitions from MySQL", len(statements))
	return strings.Join(statements, "\n\n"), nil
}

// ExecuteQuery executes a SQL query and returns the results
func (ms *MySQLSource) ExecuteQuery(ctx context.Context, query string, params ...interface{}) ([]map[string]interface{}, error) {
	if ms.DB == nil {
		if err := ms.Connect(ctx); err != nil {
			return nil, err
		}
	}

	rows, err := ms.DB.QueryContext(ctx, query, params...)
	if err != nil {
		ms.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		ms.Logger.Errorf("Error getting columns: %v", err)
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			ms.Logger.Errorf("Error scanning row: %v", err)
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			// Convert []byte to string for text fields
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		ms.Logger.Errorf("Error iterating rows: %v", err)
		return nil, err
	}

	return results, nil
}

// tableNameFromRow picks the "Tables_in_<db>" column of a SHOW TABLES row
func tableNameFromRow(row map[string]interface{}) string {
	for col, val := range row {
		if strings.HasPrefix(col, "Tables_in_") && val != nil {
			return fmt.Sprint(val)
		}
	}
	return ""
}

// normalizeMySQLDDL drops the table options MySQL appends after the closing
// parenthesis (ENGINE=..., CHARSET=...) and terminates the statement.
func normalizeMySQLDDL(ddl string) string {
	ddl = strings.TrimSpace(ddl)
	if i := strings.LastIndex(ddl, "\n)"); i >= 0 {
		ddl = ddl[:i+2]
	}
	return ddl + ";"
}
