package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/internal/extractor"
	"github.com/vitebski/sql-er-diagram/internal/generator"
	"github.com/vitebski/sql-er-diagram/internal/layout"
	"github.com/vitebski/sql-er-diagram/internal/renderer"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

// Request is one diagram generation request
type Request struct {
	SQL string
	// Table restricts generation to a single table when set
	Table  string
	Params layout.Params
}

// DiagramService runs the extract, layout and emit pipeline shared by the
// CLI and HTTP front-ends. It holds no per-request state.
type DiagramService struct {
	Extractor *extractor.SchemaExtractor
	Dot       *generator.DotGenerator
	Drawio    *generator.DrawioGenerator
	Renderer  renderer.Renderer
	Logger    *logrus.Logger
}

// NewDiagramService creates a new diagram service
func NewDiagramService(fontName string, r renderer.Renderer, logger *logrus.Logger) *DiagramService {
	return &DiagramService{
		Extractor: extractor.NewSchemaExtractor(logger),
		Dot:       generator.NewDotGenerator(fontName, logger),
		Drawio:    generator.NewDrawioGenerator(logger),
		Renderer:  r,
		Logger:    logger,
	}
}

// ParseParams converts raw form or flag values into layout parameters.
// Empty radii fall back to the defaults and show_type is only enabled by
// the exact value "true".
func ParseParams(showType, tableRadius, fieldRadius string) (layout.Params, error) {
	params := layout.DefaultParams()
	params.ShowType = showType == "true"

	var err error
	if params.TableRadius, err = parseRadius("table_radius", tableRadius, layout.DefaultTableRadius); err != nil {
		return layout.Params{}, err
	}
	if params.FieldRadius, err = parseRadius("field_radius", fieldRadius, layout.DefaultFieldRadius); err != nil {
		return layout.Params{}, err
	}

	if err := params.Validate(); err != nil {
		return layout.Params{}, err
	}
	return params, nil
}

func parseRadius(name, raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &apperrors.ParameterError{Name: name, Value: raw}
	}
	return v, nil
}

// Schema extracts the tables a request refers to
func (s *DiagramService) Schema(req Request) ([]models.Table, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return nil, apperrors.ErrEmptyInput
	}

	if req.Table != "" {
		table, err := s.Extractor.ExtractTable(req.SQL, req.Table)
		if err != nil {
			return nil, err
		}
		return []models.Table{table}, nil
	}

	tables := s.Extractor.Extract(req.SQL)
	if len(tables) == 0 {
		s.Logger.Warn("No CREATE TABLE statements found, the diagram will be empty")
	}
	return tables, nil
}

// ExportDot returns the Graphviz source for the request
func (s *DiagramService) ExportDot(req Request) (string, error) {
	tables, err := s.Schema(req)
	if err != nil {
		return "", err
	}
	return s.Dot.Generate(tables, req.Params)
}

// ExportDrawio returns the draw.io document for the request
func (s *DiagramService) ExportDrawio(req Request) (string, error) {
	tables, err := s.Schema(req)
	if err != nil {
		return "", err
	}

	doc, err := s.Drawio.Generate(tables, req.Params)
	if err != nil {
		return "", err
	}

	s.Logger.Infof("Exported draw.io document for %d tables", len(tables))
	return doc, nil
}

// RenderImage renders the request through the configured backend
func (s *DiagramService) RenderImage(ctx context.Context, req Request) ([]byte, error) {
	dot, err := s.ExportDot(req)
	if err != nil {
		return nil, err
	}

	if s.Renderer == nil {
		return nil, &apperrors.RenderError{Backend: "none", Message: "no rendering backend configured"}
	}

	image, err := s.Renderer.Render(ctx, dot)
	if err != nil {
		return nil, err
	}

	s.Logger.Infof("Rendered diagram image (%d bytes)", len(image))
	return image, nil
}

// Tables lists table names in source order, including unterminated statements
func (s *DiagramService) Tables(sql string) ([]string, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, apperrors.ErrEmptyInput
	}
	return s.Extractor.TableNames(sql), nil
}

// Describe extracts the schema and summarizes the diagram it would produce
func (s *DiagramService) Describe(req Request) (*models.SchemaSummary, error) {
	tables, err := s.Schema(req)
	if err != nil {
		return nil, err
	}

	d := layout.Compute(tables, req.Params, layout.GraphvizScale)
	return &models.SchemaSummary{
		Tables: tables,
		Stats:  d.Stats(),
	}, nil
}
