package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"meetmii/internal/config"
	"meetmii/internal/models"
)

// GeminiClient calls the Gemini generateContent REST endpoint to turn a
// user's weekly scan numbers into a short coaching blurb.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *zap.Logger
}

func NewGeminiClient(cfg *config.Config, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  cfg.Gemini.APIKey,
		model:   cfg.Gemini.Model,
		baseURL: cfg.Gemini.BaseURL,
		logger:  logger,
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

// GenerateInsight asks the model for a 2-3 sentence weekly insight. Any
// transport, quota, or decoding failure is returned as an error; the caller
// decides the fallback text.
func (c *GeminiClient) GenerateInsight(ctx context.Context, username string, data models.WeeklyScanData) (string, error) {
	prompt := buildPrompt(username, data)

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Gemini API error",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.model),
			zap.Int("body_size", len(body)),
		)
		return "", fmt.Errorf("gemini api error: status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

func buildPrompt(username string, data models.WeeklyScanData) string {
	busiestDay := data.BusiestDay
	if busiestDay == "" {
		busiestDay = "N/A"
	}

	return fmt.Sprintf(`You are a networking coach for a professional networking app called MeetMii. Generate a short, friendly, personalized weekly insight for user %s based on their QR code scan data.

Their data this week:
- Total scans this week: %d
- Total scans last week: %d
- Busiest day: %s
- Busiest hour: %d:00

Write 2-3 sentences. Be encouraging, specific, and actionable. Do not use bullet points. Do not use markdown. Just plain conversational text.`,
		username, data.TotalScansThisWeek, data.TotalScansLastWeek, busiestDay, data.BusiestHour)
}
