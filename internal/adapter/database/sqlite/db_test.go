package sqlite

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBAppliesPoolLimits(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "app.db"))

	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..", "..", "..")
	t.Setenv("MIGRATIONS_PATH", filepath.Join(root, "db", "migrations"))

	db, err := NewDB()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
