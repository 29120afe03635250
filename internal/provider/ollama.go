package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

// ollamaProvider calls a local Ollama instance.
// Endpoints used:
//   - POST /api/generate: vision completion with inline base64 images
//   - GET  /api/tags: health check (lists pulled models)
type ollamaProvider struct {
	st      Settings
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newOllama(st Settings, logger *slog.Logger) *ollamaProvider {
	if st.BaseURL == "" {
		st.BaseURL = "http://localhost:11434"
	}
	st.BaseURL = strings.TrimRight(st.BaseURL, "/")
	return &ollamaProvider{
		st:      st,
		client:  &http.Client{},
		limiter: newLimiter(st.RateLimitRPS),
		logger:  logger,
	}
}

func (p *ollamaProvider) Name() string { return string(Ollama) }

type ollamaGenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (p *ollamaProvider) ExtractTextFromImage(ctx context.Context, image []byte) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  p.st.Model,
		Prompt: visionPrompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	}

	return runWithRetry(ctx, p.logger, "ollama", p.st, p.limiter, func(actx context.Context) (string, error) {
		raw, status, err := sendJSON(actx, p.client, p.st.BaseURL+"/api/generate", payload, nil, p.logger)
		if err != nil {
			return "", err
		}
		switch {
		case status == http.StatusNotFound:
			// the model has not been pulled; retrying cannot fix that
			return "", common.NewErrorf(common.KindPermanent,
				"model %q not found, pull it first: ollama pull %s", p.st.Model, p.st.Model)
		case status >= 500:
			return "", common.NewErrorf(common.KindTransient, "ollama server error %d: %s", status, truncateBody(raw))
		case status < 200 || status >= 300:
			return "", common.NewErrorf(common.KindPermanent, "HTTP error %d: %s", status, truncateBody(raw))
		}

		var parsed ollamaGenerateResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return "", fmt.Errorf("decode ollama response: %w", err)
		}
		return strings.TrimSpace(parsed.Response), nil
	})
}

// HealthCheck calls GET /api/tags and reports reachability.
func (p *ollamaProvider) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.st.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
