package extractor

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

// identifier matches a Unicode word so that non-ASCII table and column names
// (e.g. 客户表) are recognized.
const identifier = `[\p{L}\p{N}_]+`

var (
	// The body ends at the first ");" even when a nested paren or a quoted
	// string closes earlier than the table itself.
	tablePattern = regexp.MustCompile("(?i)CREATE TABLE\\s+[`\"]?(" + identifier + ")[`\"]?\\s*\\(([\\s\\S]*?)\\);")

	tableNamePattern = regexp.MustCompile("(?i)CREATE TABLE\\s+[`\"]?(" + identifier + ")[`\"]?\\s*\\(")

	columnPattern = regexp.MustCompile("[`\"]?(" + identifier + ")[`\"]?\\s+([^,\\n]+)")
)

// SchemaExtractor recognizes CREATE TABLE statements in free-form SQL text
type SchemaExtractor struct {
	Logger *logrus.Logger
}

// NewSchemaExtractor creates a new schema extractor
func NewSchemaExtractor(logger *logrus.Logger) *SchemaExtractor {
	return &SchemaExtractor{Logger: logger}
}

// Extract returns every table found in sql, in source order.
// No match yields an empty slice, not an error.
func (se *SchemaExtractor) Extract(sql string) []models.Table {
	matches := tablePattern.FindAllStringSubmatch(sql, -1)
	tables := make([]models.Table, 0, len(matches))

	for _, m := range matches {
		table := models.Table{
			Name:    m[1],
			Columns: extractColumns(m[2]),
		}
		se.Logger.Debugf("Extracted table %s with %d columns", table.Name, len(table.Columns))
		tables = append(tables, table)
	}

	se.Logger.Debugf("Extracted %d tables", len(tables))
	return tables
}

// ExtractTable returns the first definition of the named table.
// A missing table is reported as apperrors.ErrTableNotFound.
func (se *SchemaExtractor) ExtractTable(sql, name string) (models.Table, error) {
	pattern, err := singleTablePattern(name)
	if err != nil {
		return models.Table{}, apperrors.TableNotFound(name)
	}

	snippet := pattern.FindString(sql)
	if snippet == "" {
		se.Logger.Warningf("No definition found for table %s", name)
		return models.Table{}, apperrors.TableNotFound(name)
	}

	tables := se.Extract(snippet)
	if len(tables) == 0 {
		return models.Table{}, apperrors.TableNotFound(name)
	}

	return tables[0], nil
}

// TableNames lists the names of all CREATE TABLE statements, including ones
// whose body is not terminated yet (useful while the SQL is still being edited).
func (se *SchemaExtractor) TableNames(sql string) []string {
	matches := tableNamePattern.FindAllStringSubmatch(sql, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

func singleTablePattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)CREATE TABLE\\s+[`\"]?" + regexp.QuoteMeta(name) + "[`\"]?\\s*\\([^;]+\\);")
}

func extractColumns(body string) []models.Column {
	matches := columnPattern.FindAllStringSubmatch(body, -1)
	columns := make([]models.Column, 0, len(matches))
	for _, m := range matches {
		columns = append(columns, models.Column{
			Name: m[1],
			Type: strings.TrimSpace(m[2]),
		})
	}
	return columns
}
