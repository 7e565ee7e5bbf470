package remarks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Generator produces AI remarks for free-text project input via the Gemini
// generateContent endpoint. Like the gateway's read operations, generation is
// masked: any failure resolves to a deterministic local analysis instead of
// an error. Remarks are ephemeral and never persisted.
type Generator struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGenerator creates a remark generator against the given endpoint base,
// e.g. "https://generativelanguage.googleapis.com/v1beta".
func NewGenerator(endpoint, model, apiKey string, timeout time.Duration, logger *zap.Logger) *Generator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Generator{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate returns the model's remark for the input text, or the local
// fallback analysis on any failure. Input validation (rejecting empty text)
// belongs to the caller; the generator does not special-case it.
func (g *Generator) Generate(ctx context.Context, text string) string {
	remark, err := g.callModel(ctx, text)
	if err != nil {
		g.logger.Warn("generative endpoint unavailable, using fallback remark", zap.Error(err))
		return fallbackRemark(text)
	}
	return remark
}

func (g *Generator) callModel(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generative endpoint returned %s", resp.Status)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// fallbackRemark is the deterministic local analysis embedding the input.
func fallbackRemark(text string) string {
	return fmt.Sprintf(`AI Analysis of your input:

"%s"

This appears to be project-related content. Based on the information provided, I recommend:

1. Verify all environmental impact measurements
2. Ensure compliance with carbon credit standards
3. Document community engagement activities
4. Review technical implementation details

Overall assessment: The project shows promise for environmental benefits and should be evaluated for proper documentation and verification standards.`, text)
}
