package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/commentprep/pkg/commentprep/sentiment"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

var _ sentiment.Classifier = (*Client)(nil)

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
	} `json:"error"`
}

const classifySystem = "You are a sentiment classifier for short user comments. " +
	"For each numbered comment return an object with label (NEGATIVE or POSITIVE), " +
	"negative_score and positive_score, both between 0 and 1. " +
	"Reply with a JSON array only, one object per comment, in order."

// Classify asks the model to score texts. The reply must be a JSON array
// with one score per text.
func (c *Client) Classify(ctx context.Context, texts []string) ([]sentiment.Score, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	reply, err := c.Chat(ctx, classifySystem, formatPrompt(texts))
	if err != nil {
		return nil, err
	}

	var scores []sentiment.Score
	if err := json.Unmarshal([]byte(extractJSON(reply)), &scores); err != nil {
		return nil, fmt.Errorf("llm: decode scores: %w", err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("llm: got %d scores for %d texts", len(scores), len(texts))
	}
	for i := range scores {
		scores[i].Label = sentiment.Label(strings.ToUpper(string(scores[i].Label)))
	}
	return scores, nil
}

func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func formatPrompt(texts []string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Comments:\n")
	for idx, text := range texts {
		fmt.Fprintf(&buf, "%d. %s\n", idx+1, text)
	}
	fmt.Fprintf(&buf, "\nReturn exactly %d objects.\n", len(texts))
	return buf.String()
}

// extractJSON returns the outermost JSON array of the reply, dropping any
// code fence the model wrapped it in.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return reply
	}
	return reply[start : end+1]
}
