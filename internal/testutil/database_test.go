package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsPath(t *testing.T) {
	for _, dbType := range []string{"postgresql", "mysql"} {
		t.Run(dbType, func(t *testing.T) {
			path, err := getMigrationsPath(dbType)
			require.NoError(t, err)

			assert.True(t, filepath.IsAbs(path))
			assert.Equal(t, dbType, filepath.Base(path))

			entries, err := os.ReadDir(path)
			require.NoError(t, err)
			assert.NotEmpty(t, entries)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := getMigrationsPath("oracle")
		assert.ErrorContains(t, err, "migrations directory not found for oracle")
	})
}

func TestGetMigrationsPathFromDifferentWorkingDir(t *testing.T) {
	original, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(original)) }()

	require.NoError(t, os.Chdir(t.TempDir()))

	_, err = getMigrationsPath("postgresql")
	assert.Error(t, err)
}

func TestMigrationFilesArePaired(t *testing.T) {
	for _, dbType := range []string{"postgresql", "mysql"} {
		t.Run(dbType, func(t *testing.T) {
			path, err := getMigrationsPath(dbType)
			require.NoError(t, err)

			ups, err := filepath.Glob(filepath.Join(path, "*.up.sql"))
			require.NoError(t, err)
			downs, err := filepath.Glob(filepath.Join(path, "*.down.sql"))
			require.NoError(t, err)

			assert.Len(t, downs, len(ups))
			for _, up := range ups {
				down := up[:len(up)-len(".up.sql")] + ".down.sql"
				assert.FileExists(t, down)
			}
		})
	}
}
