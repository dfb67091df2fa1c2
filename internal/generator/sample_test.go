package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/sql-er-diagram/internal/extractor"
)

func TestExampleSQL(t *testing.T) {
	tables := extractor.NewSchemaExtractor(testLogger()).Extract(ExampleSQL)

	require.Len(t, tables, 3)
	assert.Equal(t, "客户表", tables[0].Name)
	assert.Equal(t, "订单表", tables[1].Name)
	assert.Equal(t, "商品表", tables[2].Name)

	assert.Len(t, tables[0].Columns, 4)
	assert.Equal(t, "INT PRIMARY KEY", tables[0].Columns[0].Type)
	// the comma inside DECIMAL(10,2) ends the type text
	assert.Equal(t, "DECIMAL(10", tables[1].Columns[3].Type)
}

func TestSampleGenerate(t *testing.T) {
	templateTypes := make(map[string]string, len(columnTemplates))
	for _, c := range columnTemplates {
		templateTypes[c.name] = c.dataType
	}

	sg := NewSampleGenerator(testLogger())
	se := extractor.NewSchemaExtractor(testLogger())

	for _, n := range []int{0, 1, 5, 20} {
		sql := sg.Generate(n)
		tables := se.Extract(sql)

		require.Len(t, tables, n)
		names := make(map[string]bool)
		for _, tbl := range tables {
			assert.False(t, names[tbl.Name], "duplicate table %s", tbl.Name)
			names[tbl.Name] = true

			require.NotEmpty(t, tbl.Columns)
			assert.Equal(t, "id", tbl.Columns[0].Name)
			assert.Equal(t, "INT PRIMARY KEY AUTO_INCREMENT", tbl.Columns[0].Type)
			assert.LessOrEqual(t, len(tbl.Columns), 8)
			for _, col := range tbl.Columns[1:] {
				assert.Equal(t, templateTypes[col.Name], col.Type, "column %s of %s", col.Name, tbl.Name)
			}
		}
	}
}

func TestSeededSampleGenerate(t *testing.T) {
	first := NewSeededSampleGenerator(42, testLogger()).Generate(6)
	second := NewSeededSampleGenerator(42, testLogger()).Generate(6)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
