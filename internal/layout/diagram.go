package layout

import (
	"github.com/vitebski/sql-er-diagram/pkg/models"
	"github.com/yourbasic/graph"
)

// Diagram is the positioned node set of one schema plus the undirected
// table-column graph connecting them. Node indices are vertices of the graph.
type Diagram struct {
	Nodes []models.PositionedNode

	tables  int
	ids     idSet
	pending []models.Edge
	graph   *graph.Immutable
}

func newDiagram(tables []models.Table) *Diagram {
	n := len(tables)
	for _, t := range tables {
		n += len(t.Columns)
	}
	return &Diagram{
		Nodes:  make([]models.PositionedNode, 0, n),
		tables: len(tables),
		ids:    make(idSet, n),
	}
}

func (d *Diagram) addNode(node models.PositionedNode) int {
	d.Nodes = append(d.Nodes, node)
	return len(d.Nodes) - 1
}

func (d *Diagram) connect(table, column int) {
	d.pending = append(d.pending, models.Edge{From: table, To: column})
}

// freeze builds the graph once every node is known. Sorting makes Visit
// return neighbours in ascending index order, i.e. column order.
func (d *Diagram) freeze() {
	g := graph.New(len(d.Nodes))
	for _, e := range d.pending {
		g.AddBoth(e.From, e.To)
	}
	d.graph = graph.Sort(g)
	d.pending = nil
}

// Edges lists every table-column edge, grouped by table in source order.
func (d *Diagram) Edges() []models.Edge {
	edges := make([]models.Edge, 0, len(d.Nodes)-d.tables)
	for v, node := range d.Nodes {
		if node.Kind != models.TableNode {
			continue
		}
		for _, w := range d.Columns(v) {
			edges = append(edges, models.Edge{From: v, To: w})
		}
	}
	return edges
}

// Columns returns the node indices of the columns attached to table node v
func (d *Diagram) Columns(v int) []int {
	var cols []int
	d.graph.Visit(v, func(w int, _ int64) bool {
		cols = append(cols, w)
		return false
	})
	return cols
}

// Parent returns the table node index owning column node v, or -1 for a table node.
func (d *Diagram) Parent(v int) int {
	if d.Nodes[v].Kind == models.TableNode {
		return -1
	}
	parent := -1
	d.graph.Visit(v, func(w int, _ int64) bool {
		parent = w
		return true
	})
	return parent
}

// Components groups node indices into connected components; every table
// forms its own component since no edges run between tables.
func (d *Diagram) Components() [][]int {
	return graph.Components(d.graph)
}

func (d *Diagram) Stats() models.DiagramStats {
	return models.DiagramStats{
		Tables:     d.tables,
		Columns:    len(d.Nodes) - d.tables,
		Edges:      len(d.Edges()),
		Components: len(d.Components()),
	}
}
