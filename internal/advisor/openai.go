package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"growdash/internal/analytics"
)

const systemPrompt = "You are a trading performance coach. Use only the provided analytics context, " +
	"be concise, and avoid guaranteed-return language."

// openAIClient talks to the OpenAI responses API. Any failure here is
// recoverable by design: the caller falls back to the rule-based answer.
type openAIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func (c *openAIClient) Answer(ctx context.Context, question string, snapshot analytics.Snapshot, guidance Guidance) (string, error) {
	promptContext := map[string]any{
		"question": question,
		"analytics": map[string]any{
			"summary":            snapshot.Summary,
			"trade_stats":        snapshot.TradeStats,
			"ce_vs_pe":           snapshot.CEvsPE,
			"most_traded_strike": topN(snapshot.MostTradedStrike, 5),
			"holding_time":       snapshot.HoldingTime,
		},
		"base_guidance": guidance,
	}
	contextJSON, err := json.Marshal(promptContext)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"model": c.Model,
		"input": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{
				"role": "user",
				"content": "Analyze the trading dashboard context and answer the user's question. " +
					"Return concise, practical guidance in plain text.\n\n" + string(contextJSON),
			},
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/responses", bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if text := strings.TrimSpace(payload.OutputText); text != "" {
		return text, nil
	}
	var parts []string
	for _, item := range payload.Output {
		for _, content := range item.Content {
			if text := strings.TrimSpace(content.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}
	combined := strings.TrimSpace(strings.Join(parts, "\n"))
	if combined == "" {
		return "", errors.New("no text returned by model")
	}
	return combined, nil
}

func topN(items []analytics.StrikeActivity, n int) []analytics.StrikeActivity {
	if len(items) > n {
		return items[:n]
	}
	return items
}
