package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

const healthCheckTimeout = 5 * time.Second

// openaiProvider calls the OpenAI vision chat API. BaseURL is configurable
// so OpenAI-compatible servers (and tests) can stand in for the real one.
type openaiProvider struct {
	st      Settings
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newOpenAI(st Settings, logger *slog.Logger) (*openaiProvider, error) {
	if st.APIKey == "" {
		return nil, common.NewError(common.KindConfig,
			"OpenAI API key is required. Set VLM_API_KEY environment variable.")
	}
	if st.BaseURL == "" || strings.Contains(st.BaseURL, "localhost:11434") {
		// the shared VLM_BASE_URL default points at Ollama
		st.BaseURL = "https://api.openai.com"
	}
	if st.Model == "" {
		st.Model = "gpt-4o"
	}
	st.BaseURL = strings.TrimRight(st.BaseURL, "/")
	return &openaiProvider{
		st:      st,
		client:  &http.Client{},
		limiter: newLimiter(st.RateLimitRPS),
		logger:  logger,
	}, nil
}

func (p *openaiProvider) Name() string { return string(OpenAI) }

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiMessage struct {
	Role    string              `json:"role"`
	Content []openaiContentPart `json:"content"`
}

type openaiChatRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *openaiProvider) ExtractTextFromImage(ctx context.Context, image []byte) (string, error) {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	payload := openaiChatRequest{
		Model: p.st.Model,
		Messages: []openaiMessage{{
			Role: "user",
			Content: []openaiContentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &openaiImageURL{URL: dataURI}},
			},
		}},
		MaxTokens: 1000,
	}
	headers := map[string]string{"Authorization": "Bearer " + p.st.APIKey}

	return runWithRetry(ctx, p.logger, "openai", p.st, p.limiter, func(actx context.Context) (string, error) {
		raw, status, err := sendJSON(actx, p.client, p.st.BaseURL+"/v1/chat/completions", payload, headers, p.logger)
		if err != nil {
			return "", err
		}
		switch {
		case status == http.StatusUnauthorized:
			return "", common.NewError(common.KindPermanent,
				"invalid OpenAI API key. Please check your VLM_API_KEY environment variable.")
		case status == http.StatusTooManyRequests:
			return "", common.NewError(common.KindTransient, "OpenAI rate limit exceeded")
		case status == http.StatusBadRequest:
			var parsed openaiErrorResponse
			msg := "Bad request"
			if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
				msg = parsed.Error.Message
			}
			return "", common.NewErrorf(common.KindPermanent, "OpenAI API error: %s", msg)
		case status >= 500:
			return "", common.NewErrorf(common.KindTransient, "OpenAI server error %d: %s", status, truncateBody(raw))
		case status < 200 || status >= 300:
			return "", common.NewErrorf(common.KindPermanent, "OpenAI API error %d: %s", status, truncateBody(raw))
		}

		var parsed openaiChatResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return "", fmt.Errorf("decode openai response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", fmt.Errorf("no choices in openai response")
		}
		return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
	})
}

// HealthCheck calls GET /v1/models with the configured key.
func (p *openaiProvider) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.st.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.st.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
