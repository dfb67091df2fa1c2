package layout

import (
	"fmt"
	"math"

	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

const (
	DefaultTableRadius = 6.0
	DefaultFieldRadius = 2.0
)

// Params are the user facing layout knobs
type Params struct {
	TableRadius float64 `json:"table_radius" yaml:"table_radius"`
	FieldRadius float64 `json:"field_radius" yaml:"field_radius"`
	ShowType    bool    `json:"show_type" yaml:"show_type"`
}

// DefaultParams returns the radii used when the caller supplies none
func DefaultParams() Params {
	return Params{
		TableRadius: DefaultTableRadius,
		FieldRadius: DefaultFieldRadius,
	}
}

// Validate rejects radii that cannot be placed on a plane
func (p Params) Validate() error {
	if err := checkFinite("table_radius", p.TableRadius); err != nil {
		return err
	}
	return checkFinite("field_radius", p.FieldRadius)
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &apperrors.ParameterError{Name: name, Value: fmt.Sprint(v)}
	}
	return nil
}

// Scale maps radius units onto an emitter's coordinate space.
type Scale struct {
	OriginX   float64
	OriginY   float64
	TableUnit float64
	FieldUnit float64
}

var (
	// GraphvizScale keeps raw radius units, pinned around the mathematical origin
	GraphvizScale = Scale{OriginX: 0, OriginY: 0, TableUnit: 1, FieldUnit: 1}
	// DrawioScale centers the diagram on the page in pixels
	DrawioScale = Scale{OriginX: 400, OriginY: 300, TableUnit: 50, FieldUnit: 100}
)

// AngleStep returns the angular distance in degrees between n siblings.
func AngleStep(n int) float64 {
	if n <= 1 {
		return 0
	}
	return 360 / float64(n)
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// polar returns the point at radius r and angle deg around (cx, cy)
func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := Radians(deg)
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

// Compute places every table on a circle around the origin and every column
// on a circle around its table. Tables are laid out in source order.
// A single table sits on the origin itself.
func Compute(tables []models.Table, params Params, scale Scale) *Diagram {
	d := newDiagram(tables)

	tableStep := AngleStep(len(tables))
	tableRadius := params.TableRadius * scale.TableUnit
	if len(tables) == 1 {
		tableRadius = 0
	}
	fieldRadius := params.FieldRadius * scale.FieldUnit

	for i, table := range tables {
		theta := float64(i) * tableStep
		tx, ty := polar(scale.OriginX, scale.OriginY, tableRadius, theta)

		tableIdx := d.addNode(models.PositionedNode{
			ID:     d.ids.issue(table.Name),
			Label:  table.Name,
			X:      tx,
			Y:      ty,
			Angle:  theta,
			Shape:  models.ShapeRectangle,
			Kind:   models.TableNode,
			Table:  i,
			Column: -1,
		})

		// Zero columns means no column nodes and no division by zero.
		if len(table.Columns) == 0 {
			continue
		}

		fieldStep := 360 / float64(len(table.Columns))
		for j, col := range table.Columns {
			phi := float64(j) * fieldStep
			fx, fy := polar(tx, ty, fieldRadius, phi)

			colIdx := d.addNode(models.PositionedNode{
				ID:     d.ids.issue(table.Name + "_" + col.Name),
				Label:  columnLabel(col, params.ShowType),
				X:      fx,
				Y:      fy,
				Angle:  phi,
				Shape:  models.ShapeEllipse,
				Kind:   models.ColumnNode,
				Table:  i,
				Column: j,
			})
			d.connect(tableIdx, colIdx)
		}
	}

	d.freeze()
	return d
}

func columnLabel(col models.Column, showType bool) string {
	if showType {
		return col.Name + "\n" + col.Type
	}
	return col.Name
}

// idSet issues identifiers that stay unique inside one diagram
type idSet map[string]struct{}

func (s idSet) issue(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := s[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	s[id] = struct{}{}
	return id
}
