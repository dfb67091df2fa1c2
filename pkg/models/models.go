package models

// Column represents a column definition recognized inside a CREATE TABLE body
type Column struct {
	Name string `json:"name" yaml:"name"`
	// Type is the raw trailing declaration text, e.g. "VARCHAR(100) NOT NULL"
	Type string `json:"type" yaml:"type"`
}

// Table represents one CREATE TABLE occurrence in source order
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Shape is the visual shape of a diagram node
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeEllipse   Shape = "ellipse"
)

// NodeKind tells table nodes apart from column nodes
type NodeKind int

const (
	TableNode NodeKind = iota
	ColumnNode
)

func (k NodeKind) String() string {
	switch k {
	case TableNode:
		return "table"
	case ColumnNode:
		return "column"
	default:
		return "unknown"
	}
}

// PositionedNode is a table or column placed on the diagram plane
type PositionedNode struct {
	ID    string
	Label string
	X     float64
	Y     float64
	// Angle is the placement angle in degrees around the parent center
	Angle float64
	Shape Shape
	Kind  NodeKind
	// Table is the index of the owning table in the extracted schema
	Table int
	// Column is the index of the column inside its table, -1 for table nodes
	Column int
}

// Edge is an undirected table-to-column connection, expressed as node indices
type Edge struct {
	From int
	To   int
}

// DiagramStats summarizes a laid out diagram
type DiagramStats struct {
	Tables     int `json:"tables" yaml:"tables"`
	Columns    int `json:"columns" yaml:"columns"`
	Edges      int `json:"edges" yaml:"edges"`
	Components int `json:"components" yaml:"components"`
}

// SchemaSummary is the listing printed by the tables command
type SchemaSummary struct {
	Tables []Table      `json:"tables" yaml:"tables"`
	Stats  DiagramStats `json:"stats" yaml:"stats"`
}
