package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyx-scan/nyx/internal/config"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/nyxerr"
	"github.com/nyx-scan/nyx/internal/pipeline"
)

func TestUnknownFlagFailsBeforeAnyCommandRuns(t *testing.T) {
	ranCommand = false
	root := NewRootCmd()
	root.SetArgs([]string{"scan", "--bogus"})
	err := root.Execute()
	require.Error(t, err)
	assert.False(t, ranCommand, "a parse error must not reach RunE")
}

func TestResolveProjectRejectsMissingPath(t *testing.T) {
	_, _, err := resolveProject("/no/such/path/for/nyx/tests")
	require.Error(t, err)
	assert.Equal(t, 2, nyxerr.ExitCode(err, false))
}

func TestResolveProjectUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	id, abs, err := resolveProject(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(abs), id)
}

func TestScanOptionsHighOnlyRaisesFloor(t *testing.T) {
	cfg := config.Default()
	opts := scanOptions(cfg, "proj", "/tmp/proj", true, true)
	assert.Equal(t, model.High, opts.MinSeverity)
	assert.Equal(t, pipeline.ModeFull, opts.Mode)
	assert.True(t, opts.UseIndex)
	assert.True(t, opts.WriteIndex)
}

func TestScanOptionsRespectsConfiguredFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Scanner.MinSeverity = "Critical"
	opts := scanOptions(cfg, "proj", "/tmp/proj", false, true)
	// --high-only never lowers an already stricter floor.
	assert.Equal(t, model.Critical, opts.MinSeverity)
	assert.False(t, opts.UseIndex)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, nyxerr.ExitCode(nil, false))
	assert.Equal(t, 1, nyxerr.ExitCode(nil, true))
	assert.Equal(t, 2, nyxerr.ExitCode(nyxerr.NewUser("bad"), false))
	assert.Equal(t, 3, nyxerr.ExitCode(nyxerr.NewIndex(assert.AnError, true), false))
}
