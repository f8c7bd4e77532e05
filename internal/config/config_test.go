package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Fetch.RequestsPerSec, 0.001)
	assert.Equal(t, "auto", cfg.OCR.Provider)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractPath)
	assert.Equal(t, "pdftoppm", cfg.OCR.PdfToPPMPath)
	assert.Equal(t, 60, cfg.Convert.TimeoutSecs)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.Equal(t, "cardsift.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
ocr:
  provider: pdftotext
extract:
  workers: 1
  rules_path: my-rules.yaml
log:
  level: debug
  format: console
server:
  port: 9999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", cfg.OCR.Provider)
	assert.Equal(t, 1, cfg.Extract.Workers)
	assert.Equal(t, "my-rules.yaml", cfg.Extract.RulesPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9999, cfg.Server.Port)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CARDSIFT_LOG_LEVEL", "warn")
	t.Setenv("CARDSIFT_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
