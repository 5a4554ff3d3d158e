package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/internal/common"
)

func TestLoadConfigFlagsOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, true)
	require.NoError(t, cmd.Flags().Parse([]string{"--dir", dir, "--workers", "3", "--preprocess", "--lang", "deu", "--document-timeout", "10m"}))

	cfg, logger, err := loadConfig(cmd, runBindings, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, dir, cfg.PathToFiles)
	assert.Equal(t, dir, cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.AddPreProcessing)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.Equal(t, 10*time.Minute, cfg.DocumentTimeout)
	assert.Equal(t, common.BackendCLI, cfg.OCR.Backend, "unset flags keep the defaults")
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, false)

	cfg, _, err := loadConfig(cmd, runBindings, map[string]any{"pathtofiles": dir})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.PathToFiles)
}

func TestLoadConfigRequiresDirectory(t *testing.T) {
	t.Setenv(common.EnvPrefix+"_PATHTOFILES", "")
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, true)

	_, _, err := loadConfig(cmd, runBindings, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "scanocr "+Version)
}
