// Package genai calls a Gemini-compatible generateContent endpoint.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("genai client not configured")

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, history ...Turn) (string, error)
}

// Turn is one earlier message of a conversation
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Client calls the model over HTTP
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// New creates a client with the given request timeout
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt, preceded by history, and returns the first candidate's text
func (c *Client) Generate(ctx context.Context, prompt string, history ...Turn) (string, error) {
	if c.APIKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := generateRequest{}
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" || t.Role == "model" {
			role = "model"
		}
		reqBody.Contents = append(reqBody.Contents, content{Role: role, Parts: []part{{Text: t.Text}}})
	}
	reqBody.Contents = append(reqBody.Contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	// the key travels in a header; transport errors print the URL
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, url.PathEscape(c.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("genai error %s: %s", resp.Status, string(bodyBytes))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("genai returned no candidates")
	}
	return text, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence from model output
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
