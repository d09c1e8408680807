package ctx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenEstimator(t *testing.T) {
	for _, name := range []string{"simple", "tiktoken"} {
		est, err := NewTokenEstimator(name)
		require.NoError(t, err, name)
		assert.NotNil(t, est, name)
	}

	_, err := NewTokenEstimator("magic")
	assert.Error(t, err)
}

func TestEstimateTokensSimple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 400)), 0o644))

	n, err := EstimateTokensSimple(path)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = EstimateTokensSimple(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
