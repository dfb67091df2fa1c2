package connector

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
)

// Source yields SQL text containing CREATE TABLE statements
type Source interface {
	LoadDDL(ctx context.Context) (string, error)
	Close() error
}

// Open returns the source for a database URL. Supported schemes are
// postgres:// (or postgresql://), mysql:// and sqlite://.
func Open(databaseURL string, logger *logrus.Logger) (Source, error) {
	dbType, connectionStr, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Using %s source", dbType)
	switch dbType {
	case "postgres":
		return NewPostgresSource(connectionStr, logger), nil
	case "mysql":
		return NewMySQLSource(connectionStr, logger), nil
	default:
		return NewSQLiteSource(connectionStr, logger), nil
	}
}

func parseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("%w: database URL is required", apperrors.ErrUnsupportedSource)
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("%w: invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)", apperrors.ErrUnsupportedSource)
}

// LoadFile reads SQL text from path; "-" reads stdin instead
func LoadFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read SQL file: %w", err)
	}
	return string(data), nil
}

// SaveFile writes data to path; "-" writes to stdout instead
func SaveFile(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
