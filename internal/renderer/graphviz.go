package renderer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
)

const (
	DefaultBinary  = "neato"
	DefaultFormat  = "png"
	DefaultTimeout = 30 * time.Second
)

// Renderer turns a DOT graph into an image
type Renderer interface {
	Render(ctx context.Context, dot string) ([]byte, error)
}

// GraphvizRenderer shells out to a Graphviz layout binary. Every call works
// in its own temporary directory which is removed afterwards, whether the
// backend succeeded or not.
type GraphvizRenderer struct {
	Binary  string
	Format  string
	TempDir string // empty means os.TempDir()
	Timeout time.Duration
	Logger  *logrus.Logger
}

// NewGraphvizRenderer creates a new Graphviz renderer
func NewGraphvizRenderer(binary, format string, timeout time.Duration, logger *logrus.Logger) *GraphvizRenderer {
	if binary == "" {
		binary = DefaultBinary
	}
	if format == "" {
		format = DefaultFormat
	}
	return &GraphvizRenderer{
		Binary:  binary,
		Format:  format,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Available reports whether the configured binary can be found
func (r *GraphvizRenderer) Available() error {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return r.fail("graphviz binary not found", err)
	}
	return nil
}

// Render runs the backend on dot and returns the produced image bytes
func (r *GraphvizRenderer) Render(ctx context.Context, dot string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp(r.TempDir, "sql-er-diagram-")
	if err != nil {
		return nil, r.fail("failed to create temporary directory", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			r.Logger.Warningf("Failed to remove temporary directory %s: %v", dir, err)
		}
	}()

	input := filepath.Join(dir, "er_diagram.dot")
	output := filepath.Join(dir, "er_diagram."+r.Format)

	if err := os.WriteFile(input, []byte(dot), 0o600); err != nil {
		return nil, r.fail("failed to write graph source", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, "-T"+r.Format, "-o"+output, input)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	r.Logger.Debugf("Running %s", strings.Join(cmd.Args, " "))
	start := time.Now()

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "timed out after " + r.Timeout.String()
			err = ctx.Err()
		}
		r.Logger.Errorf("Graphviz failed: %v", err)
		return nil, r.fail(msg, err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, r.fail("no output file produced", err)
	}
	if len(data) == 0 {
		return nil, r.fail("empty output file produced", nil)
	}

	r.Logger.Debugf("Rendered %d bytes of %s in %v", len(data), r.Format, time.Since(start))
	return data, nil
}

func (r *GraphvizRenderer) fail(msg string, err error) error {
	return &apperrors.RenderError{Backend: r.Binary, Message: msg, Err: err}
}
