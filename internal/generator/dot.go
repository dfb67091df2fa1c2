package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/layout"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

// DefaultFontName renders CJK table and column names out of the box
const DefaultFontName = "Microsoft YaHei"

// graphAttrs are written in this order so the output is stable
var graphAttrs = [][2]string{
	{"layout", "neato"},
	{"splines", "spline"},
	{"overlap", "scale"},
	{"sep", `"+30"`},
	{"esep", `"+20"`},
	{"nodesep", "1.0"},
	{"charset", "utf8"},
}

// DotGenerator emits the diagram as an undirected Graphviz graph whose nodes
// are pinned to their computed positions.
type DotGenerator struct {
	FontName string
	Scale    layout.Scale
	Logger   *logrus.Logger
}

// NewDotGenerator creates a new DOT generator
func NewDotGenerator(fontName string, logger *logrus.Logger) *DotGenerator {
	if fontName == "" {
		fontName = DefaultFontName
	}
	return &DotGenerator{
		FontName: fontName,
		Scale:    layout.GraphvizScale,
		Logger:   logger,
	}
}

// Generate lays out tables and returns the complete DOT source
func (g *DotGenerator) Generate(tables []models.Table, params layout.Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	d := layout.Compute(tables, params, g.Scale)
	font := quoteDot(g.FontName)

	var sb strings.Builder
	sb.WriteString("graph ER {\n")

	attrs := make([]string, 0, len(graphAttrs))
	for _, kv := range graphAttrs {
		attrs = append(attrs, kv[0]+"="+kv[1])
	}
	fmt.Fprintf(&sb, "\tgraph [%s]\n", strings.Join(attrs, " "))
	fmt.Fprintf(&sb, "\tnode [fontname=%s shape=rectangle]\n", font)

	for v, node := range d.Nodes {
		fmt.Fprintf(&sb, "\t%s [label=%s pos=\"%s,%s!\" shape=%s fontname=%s]\n",
			quoteDot(node.ID), quoteDot(node.Label),
			formatCoord(node.X), formatCoord(node.Y),
			node.Shape, font)

		if node.Kind == models.ColumnNode {
			parent := d.Nodes[d.Parent(v)]
			fmt.Fprintf(&sb, "\t%s -- %s\n", quoteDot(parent.ID), quoteDot(node.ID))
		}
	}

	sb.WriteString("}\n")

	stats := d.Stats()
	g.Logger.Debugf("Generated DOT graph with %d tables, %d columns and %d edges", stats.Tables, stats.Columns, stats.Edges)
	return sb.String(), nil
}

// quoteDot returns s as a DOT double-quoted string. Newlines become the
// centered line break escape understood by Graphviz labels.
func quoteDot(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			// dropped
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// formatCoord rounds away floating point noise such as sin(180°) and never
// prints negative zero.
func formatCoord(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
