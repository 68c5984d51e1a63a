package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_UpAndDownPairs(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.Len(t, ups, 3)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestFS_HistoryHasNoProductForeignKey(t *testing.T) {
	content, err := fs.ReadFile(FS, "000003_create_comparison_history.up.sql")
	require.NoError(t, err)
	assert.NotContains(t, string(content), "REFERENCES")
	assert.Contains(t, string(content), "TEXT[]")
}
