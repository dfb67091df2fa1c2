package generator

import (
	"encoding/xml"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/layout"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

const (
	tableStyle  = "whiteSpace=wrap;html=1;"
	columnStyle = "ellipse;whiteSpace=wrap;html=1;"
	edgeStyle   = "endArrow=none;html=1;edgeStyle=none;"

	tableWidth   = "120"
	tableHeight  = "40"
	columnWidth  = "120"
	columnHeight = "60"

	// the modification stamp is fixed so identical input yields identical files
	drawioModified = "2024-01-01T00:00:00.000Z"
)

type mxFile struct {
	XMLName  xml.Name  `xml:"mxfile"`
	Host     string    `xml:"host,attr"`
	Modified string    `xml:"modified,attr"`
	Agent    string    `xml:"agent,attr"`
	Version  string    `xml:"version,attr"`
	Diagram  mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Dx         string `xml:"dx,attr"`
	Dy         string `xml:"dy,attr"`
	Grid       string `xml:"grid,attr"`
	GridSize   string `xml:"gridSize,attr"`
	Guides     string `xml:"guides,attr"`
	Tooltips   string `xml:"tooltips,attr"`
	Connect    string `xml:"connect,attr"`
	Arrows     string `xml:"arrows,attr"`
	Fold       string `xml:"fold,attr"`
	Page       string `xml:"page,attr"`
	PageScale  string `xml:"pageScale,attr"`
	PageWidth  string `xml:"pageWidth,attr"`
	PageHeight string `xml:"pageHeight,attr"`
	Background string `xml:"background,attr"`
	Math       string `xml:"math,attr"`
	Shadow     string `xml:"shadow,attr"`
	Root       mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry"`
}

type mxGeometry struct {
	X        string `xml:"x,attr,omitempty"`
	Y        string `xml:"y,attr,omitempty"`
	Width    string `xml:"width,attr,omitempty"`
	Height   string `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// idCounter hands out cell identifiers. Ids 0 and 1 belong to the root cells.
type idCounter struct {
	next int
}

func newIDCounter() *idCounter {
	return &idCounter{next: 2}
}

func (c *idCounter) Next() string {
	id := fmt.Sprintf("node_%d", c.next)
	c.next++
	return id
}

// DrawioGenerator emits an editable draw.io (mxGraph) document
type DrawioGenerator struct {
	Scale  layout.Scale
	Logger *logrus.Logger
}

// NewDrawioGenerator creates a new draw.io generator
func NewDrawioGenerator(logger *logrus.Logger) *DrawioGenerator {
	return &DrawioGenerator{
		Scale:  layout.DrawioScale,
		Logger: logger,
	}
}

// Generate lays out tables and returns the complete document. Each call uses
// its own id counter, so repeated calls with the same input are identical.
func (g *DrawioGenerator) Generate(tables []models.Table, params layout.Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	d := layout.Compute(tables, params, g.Scale)
	ids := newIDCounter()

	cells := make([]mxCell, 0, 2+2*len(d.Nodes))
	cells = append(cells,
		mxCell{ID: "0"},
		mxCell{ID: "1", Parent: "0"},
	)

	// cell ids by node index, so edges can reference their table
	cellIDs := make([]string, len(d.Nodes))

	for v, node := range d.Nodes {
		cellIDs[v] = ids.Next()

		if node.Kind == models.TableNode {
			cells = append(cells, mxCell{
				ID:     cellIDs[v],
				Value:  node.Label,
				Style:  tableStyle,
				Vertex: "1",
				Parent: "1",
				Geometry: &mxGeometry{
					X:      formatCoord(node.X),
					Y:      formatCoord(node.Y),
					Width:  tableWidth,
					Height: tableHeight,
					As:     "geometry",
				},
			})
			continue
		}

		cells = append(cells, mxCell{
			ID:     cellIDs[v],
			Value:  node.Label,
			Style:  columnStyle,
			Vertex: "1",
			Parent: "1",
			Geometry: &mxGeometry{
				X:      formatCoord(node.X),
				Y:      formatCoord(node.Y),
				Width:  columnWidth,
				Height: columnHeight,
				As:     "geometry",
			},
		})
		cells = append(cells, mxCell{
			ID:       ids.Next(),
			Style:    edgeStyle,
			Edge:     "1",
			Parent:   "1",
			Source:   cellIDs[d.Parent(v)],
			Target:   cellIDs[v],
			Geometry: &mxGeometry{Relative: "1", As: "geometry"},
		})
	}

	doc := mxFile{
		Host:     "app.diagrams.net",
		Modified: drawioModified,
		Agent:    "SQL ER Generator",
		Version:  "21.1.1",
		Diagram: mxDiagram{
			ID:    "ER-Diagram",
			Name:  "ER图",
			Model: newGraphModel(cells),
		},
	}

	// encoding/xml writes newlines inside attributes as &#xA;, which draw.io
	// renders as a line break in the column label.
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode draw.io document: %w", err)
	}

	g.Logger.Debugf("Generated draw.io document with %d cells", len(cells))
	return xml.Header + string(out) + "\n", nil
}

func newGraphModel(cells []mxCell) mxGraphModel {
	return mxGraphModel{
		Dx:         "1000",
		Dy:         "1000",
		Grid:       "1",
		GridSize:   "10",
		Guides:     "1",
		Tooltips:   "1",
		Connect:    "1",
		Arrows:     "1",
		Fold:       "1",
		Page:       "1",
		PageScale:  "1",
		PageWidth:  "1169",
		PageHeight: "827",
		Background: "#ffffff",
		Math:       "0",
		Shadow:     "0",
		Root:       mxRoot{Cells: cells},
	}
}
