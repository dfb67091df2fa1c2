//go:build integration

package connector

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/vitebski/sql-er-diagram/internal/extractor"
)

func TestPostgresLoadDDL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("erd"),
		postgres.WithUsername("erd"),
		postgres.WithPassword("erd"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `
		CREATE TABLE customers (id serial PRIMARY KEY, name varchar(100) NOT NULL);
		CREATE TABLE orders (id bigint PRIMARY KEY, customer_id integer REFERENCES customers(id), placed_at timestamp);
	`)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	src := NewPostgresSource(connStr, createTestLogger())
	defer src.Close()

	ddl, err := src.LoadDDL(ctx)
	require.NoError(t, err)

	tables := extractor.NewSchemaExtractor(createTestLogger()).Extract(ddl)
	require.Len(t, tables, 2)
	assert.Equal(t, "customers", tables[0].Name)
	assert.Equal(t, "orders", tables[1].Name)
	assert.Equal(t, "integer NOT NULL", tables[0].Columns[0].Type)
	assert.Equal(t, "character varying(100) NOT NULL", tables[0].Columns[1].Type)
	assert.Len(t, tables[1].Columns, 3)
}
