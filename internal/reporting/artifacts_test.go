package reporting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifacts(t *testing.T) {
	ctx := context.Background()
	s := seedRun(t, ctx)
	dir := t.TempDir()

	written, err := newGenerator(s).WriteArtifacts(ctx, "r1", dir)
	require.NoError(t, err)
	require.Len(t, written, 7)

	for _, name := range []string{
		ReportFileName, ComponentsFileName, ForecastFileName,
		ObservedTrendPlotName, DecompositionPlotName,
		ResidualACFPlotName, ForecastPlotName,
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestWriteArtifactsMissingRun(t *testing.T) {
	ctx := context.Background()
	s := seedRun(t, ctx)

	_, err := newGenerator(s).WriteArtifacts(ctx, "missing", t.TempDir())
	assert.Error(t, err)
}
