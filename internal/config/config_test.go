package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"locmerge/internal/locres"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "Sandfall-ori"), cfg.OriginalRoot)
	assert.Equal(t, "Game.json", cfg.ReservedName)
	assert.Equal(t, locres.CodecConverter, cfg.Codec)
	assert.Equal(t, 3, cfg.PakMountDepth)
	assert.Equal(t, 8, cfg.ScanWorkers)
	assert.Equal(t, filepath.Join("output", "EnhancedDescriptions_zhHans-tmxk_P"), cfg.ModBase())
	assert.Equal(t, filepath.Join("output", "EnhancedDescriptions_zhHans-tmxk_P.pak"), cfg.PakOutput())
	assert.Equal(t,
		filepath.Join(cfg.ModBase(), "Sandfall", "Content", "Localization", "Game", "zh-Hans", "Game.locres"),
		cfg.OutputResource())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORK_FILE", "custom/work.json")
	t.Setenv("LOCRES_CODEC", locres.CodecJSON)
	t.Setenv("UNREALPAK_MOUNT_DEPTH", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "custom/work.json", cfg.WorkFile)
	assert.Equal(t, locres.CodecJSON, cfg.Codec)
	assert.Equal(t, 3, cfg.PakMountDepth)
}

func TestLoadProjectFileOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MOD_NAME", "FromEnv")

	project := `
mod_name: FromFile
codec: json
pak_mount_depth: 4
scan_workers: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(project), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "FromFile", cfg.ModName)
	assert.Equal(t, locres.CodecJSON, cfg.Codec)
	assert.Equal(t, 4, cfg.PakMountDepth)
	assert.Equal(t, 2, cfg.ScanWorkers)
	assert.Equal(t, "Game.json", cfg.ReservedName)
}

func TestLoadExplicitProjectFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("missing.yaml")
	require.Error(t, err)
}

func TestLoadMalformedProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("mod_name: [unclosed"), 0644))

	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Codec = "zip"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.WorkFile = ""
	assert.ErrorContains(t, bad.Validate(), "work_file")

	bad = *cfg
	bad.PakMountDepth = -1
	assert.Error(t, bad.Validate())
}

func TestLoadWarnsWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	_, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "No .env file found")
}
