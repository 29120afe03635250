package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/vlm-extract/constants"
)

// Config holds the process-wide configuration snapshot. It is read once at
// startup and passed explicitly into every component; nothing mutates it
// afterwards.
type Config struct {
	VLM   VLMConfig
	File  FileConfig
	Batch BatchConfig
	PDF   PDFConfig
	Tools ToolsConfig
}

// VLMConfig holds provider selection and HTTP client settings.
type VLMConfig struct {
	Provider     string
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RateLimitRPS float64 // 0 disables client-side pacing
}

// FileConfig holds file validation settings.
type FileConfig struct {
	MaxFileSizeMB   int
	ImageFormats    []string
	DocumentFormats []string
}

// BatchConfig holds batch fan-out settings.
type BatchConfig struct {
	Size    int
	Timeout time.Duration // advisory; batches are bounded by caller ctx, not a deadline
}

// PDFConfig holds the smart-pipeline tuning knobs.
type PDFConfig struct {
	TextRatio float64 // minimum chars/(pages*100) for the embedded-text fast path
	MinChars  int     // floor guarding against a single stray text fragment
	RenderDPI int
}

// ToolsConfig holds names or absolute paths of the external binaries the
// renderer and the legacy converters shell out to.
type ToolsConfig struct {
	Pdftoppm      string
	Pandoc        string
	Libreoffice   string
	EbookConvert  string
	Wkhtmltopdf   string
	HeicConverter string // heif-convert | magick | sips
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		VLM: VLMConfig{
			Provider:     getEnv("VLM_PROVIDER", "ollama"),
			BaseURL:      getEnv("VLM_BASE_URL", "http://localhost:11434"),
			APIKey:       getEnv("VLM_API_KEY", ""),
			Model:        getEnv("VLM_MODEL", "llava"),
			Timeout:      getEnvAsSeconds("VLM_TIMEOUT", 30*time.Second),
			MaxRetries:   getEnvAsInt("VLM_MAX_RETRIES", 3),
			RateLimitRPS: getEnvAsFloat("VLM_RATE_LIMIT_RPS", 0),
		},
		File: FileConfig{
			MaxFileSizeMB:   getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			ImageFormats:    getEnvAsList("SUPPORTED_IMAGE_FORMATS", constants.DefaultImageFormats),
			DocumentFormats: getEnvAsList("SUPPORTED_DOCUMENT_FORMATS", constants.DefaultDocumentFormats),
		},
		Batch: BatchConfig{
			Size:    getEnvAsInt("BATCH_SIZE", 5),
			Timeout: getEnvAsSeconds("BATCH_TIMEOUT", 60*time.Second),
		},
		PDF: PDFConfig{
			TextRatio: getEnvAsFloat("PDF_TEXT_RATIO", 0.1),
			MinChars:  getEnvAsInt("PDF_MIN_CHARS", 50),
			RenderDPI: getEnvAsInt("PDF_RENDER_DPI", 200),
		},
		Tools: ToolsConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Pandoc:        getEnv("PANDOC_BIN", "pandoc"),
			Libreoffice:   getEnv("LIBREOFFICE_BIN", "libreoffice"),
			EbookConvert:  getEnv("EBOOK_CONVERT_BIN", "ebook-convert"),
			Wkhtmltopdf:   getEnv("WKHTMLTOPDF_BIN", "wkhtmltopdf"),
			HeicConverter: getEnv("HEIC_CONVERTER", "magick"),
		},
	}
}

// Validate checks the loaded configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.VLM.Provider == "" {
		return NewError(KindConfig, "VLM_PROVIDER is required")
	}
	if c.VLM.MaxRetries < 1 {
		return NewError(KindConfig, "VLM_MAX_RETRIES must be at least 1")
	}
	if c.File.MaxFileSizeMB <= 0 {
		return NewError(KindConfig, "MAX_FILE_SIZE_MB must be positive")
	}
	if c.Batch.Size < 1 {
		return NewError(KindConfig, "BATCH_SIZE must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsSeconds parses an integer number of seconds, matching the
// timeout knobs of the provider HTTP APIs.
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, constants.NormalizeExt(p))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
