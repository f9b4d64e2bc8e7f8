package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lucas-hudsn/wavereader/internal/observability"
)

var ErrMissingAPIKey = errors.New("gemini API key is required")

// GeminiClient implements TextBackend against the Gemini generateContent REST
// endpoint with a fixed model.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewGeminiClient creates a GeminiClient. baseURL is the API root
// (e.g. "https://generativelanguage.googleapis.com/v1beta").
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to the model and returns the generated text, or
// an empty string when the model yields no text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.call(ctx, prompt)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.ForecastGenerationTotal.WithLabelValues("error").Inc()
		observability.ForecastGenerationDuration.WithLabelValues("error").Observe(duration)
		return "", err
	}
	observability.ForecastGenerationTotal.WithLabelValues("success").Inc()
	observability.ForecastGenerationDuration.WithLabelValues("success").Observe(duration)
	return text, nil
}

func (c *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("request timeout: %w", err)
		}
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini API: HTTP %d", resp.StatusCode)
	}

	var apiResp generateContentResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(apiResp.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
