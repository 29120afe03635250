package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv blanks every config key so a developer's shell cannot leak
// into the assertions; getEnv treats empty as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VLM_PROVIDER", "VLM_BASE_URL", "VLM_API_KEY", "VLM_MODEL",
		"VLM_TIMEOUT", "VLM_MAX_RETRIES", "VLM_RATE_LIMIT_RPS",
		"MAX_FILE_SIZE_MB", "SUPPORTED_IMAGE_FORMATS", "SUPPORTED_DOCUMENT_FORMATS",
		"BATCH_SIZE", "BATCH_TIMEOUT",
		"PDF_TEXT_RATIO", "PDF_MIN_CHARS", "PDF_RENDER_DPI",
		"PDFTOPPM_BIN", "PANDOC_BIN", "LIBREOFFICE_BIN",
		"EBOOK_CONVERT_BIN", "WKHTMLTOPDF_BIN", "HEIC_CONVERTER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := LoadConfig()

	assert.Equal(t, "ollama", cfg.VLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.VLM.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.VLM.Timeout)
	assert.Equal(t, 3, cfg.VLM.MaxRetries)
	assert.Equal(t, 50, cfg.File.MaxFileSizeMB)
	assert.Equal(t, 5, cfg.Batch.Size)
	assert.InDelta(t, 0.1, cfg.PDF.TextRatio, 1e-9)
	assert.Equal(t, 50, cfg.PDF.MinChars)
	assert.Equal(t, 200, cfg.PDF.RenderDPI)
	assert.Contains(t, cfg.File.ImageFormats, "HEIC")
	assert.Contains(t, cfg.File.DocumentFormats, "PDF")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("VLM_PROVIDER", "openai")
	t.Setenv("VLM_TIMEOUT", "120")
	t.Setenv("VLM_MAX_RETRIES", "5")
	t.Setenv("MAX_FILE_SIZE_MB", "10")
	t.Setenv("SUPPORTED_IMAGE_FORMATS", "png, jpg")

	cfg := LoadConfig()

	assert.Equal(t, "openai", cfg.VLM.Provider)
	assert.Equal(t, 120*time.Second, cfg.VLM.Timeout)
	assert.Equal(t, 5, cfg.VLM.MaxRetries)
	assert.Equal(t, 10, cfg.File.MaxFileSizeMB)
	assert.Equal(t, []string{"PNG", "JPG"}, cfg.File.ImageFormats)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("VLM_TIMEOUT", "soon")
	t.Setenv("VLM_MAX_RETRIES", "")
	t.Setenv("PDF_TEXT_RATIO", "lots")

	cfg := LoadConfig()

	assert.Equal(t, 30*time.Second, cfg.VLM.Timeout)
	assert.Equal(t, 3, cfg.VLM.MaxRetries)
	assert.InDelta(t, 0.1, cfg.PDF.TextRatio, 1e-9)
}

func TestConfig_Validate(t *testing.T) {
	clearConfigEnv(t)

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.VLM.MaxRetries = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, IsConfig(err))
}
