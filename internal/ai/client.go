// Package ai wraps the external text-generation API used for request
// summaries and social copy. The API is consumed as a black box; anything it
// returns is delivered verbatim to staff, never published automatically.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/model"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SummarizeRequests produces a short staff-facing summary of the given
// submitted requests.
func (c *Client) SummarizeRequests(requests []model.Request) (string, error) {
	var b strings.Builder
	b.WriteString("Summarize the following parish communication requests for the office staff. " +
		"Group by request type, note anything time-sensitive, and keep it under 200 words.\n\n")
	for _, r := range requests {
		fmt.Fprintf(&b, "- [%s] %s, submitted by %s", email.TypeLabel(r.Type), r.Title, r.SubmitterName)
		if r.EventDate != "" {
			fmt.Fprintf(&b, " (event date %s)", r.EventDate)
		}
		b.WriteString("\n")
		if r.Body != "" {
			fmt.Fprintf(&b, "  %s\n", r.Body)
		}
	}
	return c.complete(b.String())
}

// SocialCopy drafts social-media copy for an approved announcement.
func (c *Client) SocialCopy(req *model.Request) (string, error) {
	var b strings.Builder
	b.WriteString("Write a short, warm social media post for a parish announcement. " +
		"No hashtags beyond two, no emojis beyond one.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	if req.EventDate != "" {
		fmt.Fprintf(&b, "Event date: %s\n", req.EventDate)
	}
	if req.Ministry != "" {
		fmt.Fprintf(&b, "Ministry: %s\n", req.Ministry)
	}
	fmt.Fprintf(&b, "Details: %s\n", req.Body)
	return c.complete(b.String())
}

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
}

func (c *Client) complete(prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("ai client not configured: missing API key")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ai API error: status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai API returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
