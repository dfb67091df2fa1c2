package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/internal/generator"
	"github.com/vitebski/sql-er-diagram/internal/layout"
)

type fakeRenderer struct {
	dot   string
	image []byte
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, dot string) ([]byte, error) {
	f.dot = dot
	return f.image, f.err
}

func newTestService(r *fakeRenderer) *DiagramService {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return NewDiagramService("", r, logger)
}

const twoTables = "CREATE TABLE users (id INT, email TEXT);\nCREATE TABLE posts (id INT, user_id INT, title TEXT);"

func TestParseParams(t *testing.T) {
	tests := []struct {
		name                  string
		showType, table, field string
		want                  layout.Params
		wantErr               string
	}{
		{name: "defaults", want: layout.Params{TableRadius: 6, FieldRadius: 2}},
		{name: "values", showType: "true", table: "8.5", field: " 3 ", want: layout.Params{TableRadius: 8.5, FieldRadius: 3, ShowType: true}},
		{name: "show type only for true", showType: "on", table: "1", field: "1", want: layout.Params{TableRadius: 1, FieldRadius: 1}},
		{name: "negative radius allowed", table: "-2", want: layout.Params{TableRadius: -2, FieldRadius: 2}},
		{name: "bad table radius", table: "six", wantErr: "table_radius"},
		{name: "bad field radius", field: "2cm", wantErr: "field_radius"},
		{name: "not finite", table: "NaN", wantErr: "table_radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.showType, tt.table, tt.field)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
				var perr *apperrors.ParameterError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.wantErr, perr.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyInput(t *testing.T) {
	s := newTestService(&fakeRenderer{})

	for _, sql := range []string{"", "   \n\t"} {
		_, err := s.ExportDrawio(Request{SQL: sql, Params: layout.DefaultParams()})
		assert.ErrorIs(t, err, apperrors.ErrEmptyInput)

		_, err = s.RenderImage(context.Background(), Request{SQL: sql, Params: layout.DefaultParams()})
		assert.ErrorIs(t, err, apperrors.ErrEmptyInput)

		_, err = s.Tables(sql)
		assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
	}
}

func TestNoTablesIsNotAnError(t *testing.T) {
	s := newTestService(&fakeRenderer{})

	doc, err := s.ExportDrawio(Request{SQL: "SELECT 1;", Params: layout.DefaultParams()})

	require.NoError(t, err)
	assert.Contains(t, doc, "<mxfile")
	assert.NotContains(t, doc, "node_2")
}

func TestSingleTableMode(t *testing.T) {
	s := newTestService(&fakeRenderer{})

	t.Run("found", func(t *testing.T) {
		dot, err := s.ExportDot(Request{SQL: twoTables, Table: "posts", Params: layout.DefaultParams()})
		require.NoError(t, err)
		assert.Contains(t, dot, `"posts" [label="posts" pos="0,0!"`)
		assert.NotContains(t, dot, `"users"`)
	})

	t.Run("missing", func(t *testing.T) {
		doc, err := s.ExportDrawio(Request{SQL: twoTables, Table: "comments", Params: layout.DefaultParams()})
		assert.ErrorIs(t, err, apperrors.ErrTableNotFound)
		assert.Empty(t, doc)
	})
}

func TestRenderImage(t *testing.T) {
	r := &fakeRenderer{image: []byte("\x89PNG")}
	s := newTestService(r)

	image, err := s.RenderImage(context.Background(), Request{SQL: twoTables, Params: layout.DefaultParams()})

	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), image)
	assert.True(t, strings.HasPrefix(r.dot, "graph ER {"))
	assert.Contains(t, r.dot, `"users" -- "users_email"`)
}

func TestRenderImageBackendFailure(t *testing.T) {
	cause := &apperrors.RenderError{Backend: "neato", Message: "Error: syntax error"}
	s := newTestService(&fakeRenderer{err: cause})

	image, err := s.RenderImage(context.Background(), Request{SQL: twoTables, Params: layout.DefaultParams()})

	assert.Nil(t, image)
	assert.ErrorIs(t, err, apperrors.ErrRender)
	assert.Contains(t, err.Error(), "Error: syntax error")
}

func TestRenderImageWithoutBackend(t *testing.T) {
	s := newTestService(nil)
	s.Renderer = nil

	_, err := s.RenderImage(context.Background(), Request{SQL: twoTables, Params: layout.DefaultParams()})

	assert.ErrorIs(t, err, apperrors.ErrRender)
}

func TestTables(t *testing.T) {
	s := newTestService(&fakeRenderer{})

	names, err := s.Tables(generator.ExampleSQL)

	require.NoError(t, err)
	assert.Equal(t, []string{"客户表", "订单表", "商品表"}, names)
}

func TestDescribe(t *testing.T) {
	s := newTestService(&fakeRenderer{})

	summary, err := s.Describe(Request{SQL: twoTables, Params: layout.DefaultParams()})

	require.NoError(t, err)
	assert.Len(t, summary.Tables, 2)
	assert.Equal(t, 2, summary.Stats.Tables)
	assert.Equal(t, 5, summary.Stats.Columns)
	assert.Equal(t, 5, summary.Stats.Edges)
	assert.Equal(t, 2, summary.Stats.Components)
}

func TestServiceErrorsAreDistinct(t *testing.T) {
	_, paramErr := ParseParams("", "x", "")
	s := newTestService(&fakeRenderer{})
	_, notFound := s.ExportDot(Request{SQL: twoTables, Table: "nope"})

	assert.False(t, errors.Is(paramErr, apperrors.ErrTableNotFound))
	assert.False(t, errors.Is(notFound, apperrors.ErrInvalidParameter))
	assert.False(t, errors.Is(paramErr, apperrors.ErrRender))
}
