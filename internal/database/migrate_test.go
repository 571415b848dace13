package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	pending, err := pendingMigrations(map[string]bool{})
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, []string{"001_init.sql", "002_children.sql"}, pending)
	assert.IsIncreasing(t, pending)

	pending, err = pendingMigrations(map[string]bool{"001_init.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_children.sql"}, pending)

	applied := map[string]bool{"001_init.sql": true, "002_children.sql": true}
	pending, err = pendingMigrations(applied)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
