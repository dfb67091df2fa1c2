package generator

import (
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/internal/layout"
	"github.com/vitebski/sql-er-diagram/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func exampleOneTables() []models.Table {
	return []models.Table{{Name: "t", Columns: []models.Column{
		{Name: "id", Type: "INT"},
		{Name: "name", Type: "VARCHAR(50)"},
	}}}
}

func TestDotGenerateSingleTable(t *testing.T) {
	g := NewDotGenerator("", testLogger())

	out, err := g.Generate(exampleOneTables(), layout.DefaultParams())
	require.NoError(t, err)

	want := `graph ER {
	graph [layout=neato splines=spline overlap=scale sep="+30" esep="+20" nodesep=1.0 charset=utf8]
	node [fontname="Microsoft YaHei" shape=rectangle]
	"t" [label="t" pos="0,0!" shape=rectangle fontname="Microsoft YaHei"]
	"t_id" [label="id" pos="2,0!" shape=ellipse fontname="Microsoft YaHei"]
	"t" -- "t_id"
	"t_name" [label="name" pos="-2,0!" shape=ellipse fontname="Microsoft YaHei"]
	"t" -- "t_name"
}
`
	assert.Equal(t, want, out)
}

func TestDotGenerateTwoTables(t *testing.T) {
	tables := []models.Table{
		{Name: "a", Columns: []models.Column{{Name: "x", Type: "INT"}}},
		{Name: "b", Columns: []models.Column{{Name: "y", Type: "INT"}}},
	}

	out, err := NewDotGenerator("Arial", testLogger()).Generate(tables, layout.DefaultParams())
	require.NoError(t, err)

	assert.Contains(t, out, `"a" [label="a" pos="6,0!" shape=rectangle fontname="Arial"]`)
	assert.Contains(t, out, `"a_x" [label="x" pos="8,0!" shape=ellipse fontname="Arial"]`)
	assert.Contains(t, out, `"b" [label="b" pos="-6,0!" shape=rectangle fontname="Arial"]`)
	assert.Contains(t, out, `"b_y" [label="y" pos="-4,0!" shape=ellipse fontname="Arial"]`)
	assert.Equal(t, 2, strings.Count(out, " -- "))
	assert.NotContains(t, out, `"a" -- "b"`)
}

func TestDotGenerateShowType(t *testing.T) {
	g := NewDotGenerator("", testLogger())
	params := layout.DefaultParams()

	plain, err := g.Generate(exampleOneTables(), params)
	require.NoError(t, err)

	params.ShowType = true
	typed, err := g.Generate(exampleOneTables(), params)
	require.NoError(t, err)

	assert.Contains(t, typed, `label="id\nINT"`)
	assert.Contains(t, typed, `label="name\nVARCHAR(50)"`)
	assert.Equal(t, strings.Count(plain, "\n"), strings.Count(typed, "\n"))
	assert.Equal(t, strings.Replace(strings.Replace(typed, `\nINT"`, `"`, 1), `\nVARCHAR(50)"`, `"`, 1), plain)
}

func TestDotGenerateEmpty(t *testing.T) {
	out, err := NewDotGenerator("", testLogger()).Generate(nil, layout.DefaultParams())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph ER {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.NotContains(t, out, "--")
}

func TestDotGenerateInvalidParams(t *testing.T) {
	out, err := NewDotGenerator("", testLogger()).Generate(exampleOneTables(), layout.Params{TableRadius: math.NaN(), FieldRadius: 2})

	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
	assert.Empty(t, out)
}

func TestQuoteDot(t *testing.T) {
	tests := map[string]string{
		"users":       `"users"`,
		"客户表":         `"客户表"`,
		`a"b`:         `"a\"b"`,
		`back\slash`:  `"back\\slash"`,
		"two\nlines":  `"two\nlines"`,
		"crlf\r\nend": `"crlf\nend"`,
	}

	for in, want := range tests {
		assert.Equal(t, want, quoteDot(in), "input %q", in)
	}
}

func TestFormatCoord(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{2 * math.Sin(math.Pi), "0"},
		{-6, "-6"},
		{0.1 + 0.2, "0.3"},
		{1234.56789, "1234.5679"},
		{400 + 300*math.Cos(2*math.Pi/3), "250"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCoord(tt.in), "input %v", tt.in)
	}
}
