package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_reviews.sql": {Data: []byte("SELECT 2;")},
		"migrations/0001_init.sql":    {Data: []byte("SELECT 1;")},
		"migrations/README.md":        {Data: []byte("docs")},
		"migrations/old/0000.sql":     {Data: []byte("SELECT 0;")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_reviews.sql"}, files)
}

func TestMigrationFiles_Embedded(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
}

func TestMigrationFiles_MissingDir(t *testing.T) {
	_, err := migrationFiles(fstest.MapFS{})
	assert.Error(t, err)
}
