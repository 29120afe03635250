// Package provider implements the interchangeable VLM backends. Every
// adapter speaks the same capability contract so the orchestrator never
// couples to a specific vendor.
package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

// visionPrompt is the fixed instruction sent with every image.
const visionPrompt = "Extract and return all the text visible in this image. Return only the text content, no explanations."

// Provider is the capability contract implemented per backend.
type Provider interface {
	// ExtractTextFromImage sends one image to the backend's vision endpoint
	// and returns the extracted text, trimmed, possibly empty.
	ExtractTextFromImage(ctx context.Context, image []byte) (string, error)

	// HealthCheck reports whether the backend is reachable. It returns
	// false on any failure and never errors.
	HealthCheck(ctx context.Context) bool

	// Name returns the provider identifier, e.g. "ollama".
	Name() string
}

// ID identifies a backend variant.
type ID string

const (
	Ollama  ID = "ollama"
	OpenAI  ID = "openai"
	LocalAI ID = "localai"
)

// IDs lists the declared provider identifiers.
func IDs() []ID {
	return []ID{Ollama, OpenAI, LocalAI}
}

// ParseID maps a provider string to its ID, case-insensitively.
func ParseID(s string) (ID, error) {
	switch ID(strings.ToLower(strings.TrimSpace(s))) {
	case Ollama:
		return Ollama, nil
	case OpenAI:
		return OpenAI, nil
	case LocalAI:
		return LocalAI, nil
	default:
		return "", common.NewErrorf(common.KindConfig, "Unsupported provider: %s", s)
	}
}

// Settings is the per-extraction provider configuration, built once from the
// process-wide snapshot and never mutated.
type Settings struct {
	ID           ID
	BaseURL      string
	Model        string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RateLimitRPS float64
}

// New constructs the adapter for a provider ID. Construction fails fast on
// configuration problems (missing credential, unimplemented backend); no
// network traffic happens here.
func New(st Settings, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch st.ID {
	case Ollama:
		return newOllama(st, logger), nil
	case OpenAI:
		return newOpenAI(st, logger)
	case LocalAI:
		return nil, common.NewError(common.KindConfig, "LocalAI provider not yet implemented")
	default:
		return nil, common.NewErrorf(common.KindConfig, "Unsupported provider: %s", st.ID)
	}
}
