package database

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource_EmbedsCatalogSchema(t *testing.T) {
	src, err := MigrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	up.Close()

	for _, table := range []string{"stores", "products", "product_images", "sync_leases"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(body), "UNIQUE (store_id, woo_id)")
	assert.Contains(t, string(body), "UNIQUE (product_id, original_url)")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	down.Close()
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS product_images")
}

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@db:5432/woosync?sslmode=disable", "pgx5://u:p@db:5432/woosync?sslmode=disable", false},
		{"postgresql://db/woosync", "pgx5://db/woosync", false},
		{"pgx5://db/woosync", "pgx5://db/woosync", false},
		{"host=db dbname=woosync", "", true},
	}

	for _, tt := range tests {
		got, err := migrationURL(tt.dsn)
		if tt.wantErr {
			assert.Error(t, err, tt.dsn)
			continue
		}
		require.NoError(t, err, tt.dsn)
		assert.Equal(t, tt.want, got)
	}
}

func TestMigrate_RejectsKeywordDSN(t *testing.T) {
	err := Migrate("host=db dbname=woosync", zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrateLogger(t *testing.T) {
	var buf bytes.Buffer
	l := migrateLogger{log: zerolog.New(&buf)}
	l.Printf("1/u catalog_mirror (%s)\n", "12ms")
	assert.Contains(t, buf.String(), "1/u catalog_mirror (12ms)")
	assert.False(t, l.Verbose())
}
