// AngelaMos | 2026
// client.go

package investigate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carterperez-dev/roadassist-api/internal/config"
)

// Client is a thin passthrough to a hosted chat-completion endpoint used by
// the dashboard's error investigator. Model behavior is the provider's
// concern; this only carries the report over and the diagnosis back.
type Client struct {
	cfg  config.InvestigateConfig
	http *http.Client
}

func NewClient(cfg config.InvestigateConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

const systemPrompt = "You are an on-call engineer for a roadside-assistance " +
	"platform. Given an error report from the admin dashboard, explain the " +
	"likely cause and suggest a concrete next step. Be brief."

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Diagnose forwards the report and returns the model's diagnosis text.
func (c *Client) Diagnose(ctx context.Context, report string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: report},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal investigate request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.Endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build investigate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call investigator: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read investigator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"investigator returned %d: %s",
			resp.StatusCode, truncate(string(payload), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode investigator response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("investigator error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("investigator returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
