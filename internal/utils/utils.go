package utils

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/pkg/models"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is shared by every environment variable the tool reads
const EnvPrefix = "SQLERD_"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	tableStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	// Create a new logger
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv(EnvPrefix + "LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	// Parse log level
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	// Configure logger. Diagrams may be written to stdout, so logs go to stderr.
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from .env file
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	// Check if a sample .env file exists but not the actual .env file
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
		logger.Debugf("No %s file found, using existing environment variables", envFile)
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	// Log all available SQLERD_* environment variables (for debugging)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, EnvPrefix) {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				logger.Debugf("%s=%s", parts[0], MaskURL(parts[1]))
			}
		}
	}

	return true
}

const (
	mysqlScheme  = "mysql://"
	maskedSecret = "xxxxx"
)

var credentialsPattern = regexp.MustCompile(`^([^:@/]*):[^@]*@`)

// MaskURL hides the password of a database URL; other values pass through.
// mysql:// values carry a go-sql-driver DSN, which url.Parse rejects.
func MaskURL(value string) string {
	if strings.HasPrefix(value, mysqlScheme) {
		return mysqlScheme + maskMySQLDSN(strings.TrimPrefix(value, mysqlScheme))
	}

	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	return u.Redacted()
}

func maskMySQLDSN(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return credentialsPattern.ReplaceAllString(dsn, "${1}:"+maskedSecret+"@")
	}
	if cfg.Passwd == "" {
		return dsn
	}
	cfg.Passwd = maskedSecret
	return cfg.FormatDSN()
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetEnv returns the value of varName, or defaultValue when unset or empty
func GetEnv(varName, defaultValue string) string {
	if value := os.Getenv(varName); value != "" {
		return value
	}
	return defaultValue
}

// PrintSchemaSummary prints the extracted tables and diagram statistics
func PrintSchemaSummary(w io.Writer, summary *models.SchemaSummary) {
	fmt.Fprintln(w, titleStyle.Render("SCHEMA SUMMARY"))
	fmt.Fprintln(w)

	if len(summary.Tables) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No CREATE TABLE statements found"))
	}

	for i, table := range summary.Tables {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, tableStyle.Render(table.Name),
			dimStyle.Render(fmt.Sprintf("(%d columns)", len(table.Columns))))
		for _, col := range table.Columns {
			fmt.Fprintf(w, "       - %s %s\n", col.Name, dimStyle.Render(col.Type))
		}
	}

	stats := summary.Stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("Tables: %d  Columns: %d  Edges: %d  Components: %d",
		stats.Tables, stats.Columns, stats.Edges, stats.Components)))
}

// PrintTableNames prints one table name per line
func PrintTableNames(w io.Writer, names []string) {
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

// WriteSchemaYAML writes the summary as YAML
func WriteSchemaYAML(w io.Writer, summary *models.SchemaSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = w.Write(data)
	return err
}
