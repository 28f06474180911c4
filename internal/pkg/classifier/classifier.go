package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultTimeout = 25 * time.Second

// Verdict is the classifier's answer for one message. When
// ViolationDetected is false the other fields carry no meaning.
type Verdict struct {
	ViolationDetected bool   `json:"violation_detected"`
	LevelName         string `json:"level_name"`
	Explanation       string `json:"explanation"`
}

// Config holds classifier client settings
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to an OpenAI-compatible chat completion endpoint and asks
// it to grade a message against the configured warning levels. Transient
// failures are retried a bounded number of times with backoff; the caller
// decides what exhaustion means (the pipeline degrades to no-violation).
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries uint64
	http       *http.Client
}

// NewClient creates a new classifier client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: uint64(maxRetries - 1),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// Classify grades a message against the known level names. The prompt is
// the admin-configured analysis instruction; contextMessages are the few
// messages preceding the graded one, oldest first.
func (c *Client) Classify(ctx context.Context, prompt string, levelNames []string, message string, contextMessages []string) (*Verdict, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("classifier config error: base_url is empty")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    c.buildMessages(prompt, levelNames, message, contextMessages),
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier request error: %w", err)
	}

	var verdict *Verdict
	backoff := retry.NewExponential(500 * time.Millisecond)
	err = retry.Do(ctx, retry.WithMaxRetries(c.maxRetries, backoff), func(ctx context.Context) error {
		v, err := c.classifyOnce(ctx, payload)
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		verdict = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

func (c *Client) buildMessages(prompt string, levelNames []string, message string, contextMessages []string) []chatMessage {
	var system strings.Builder
	system.WriteString(prompt)
	system.WriteString("\n\nKnown warning levels: ")
	system.WriteString(strings.Join(levelNames, ", "))
	system.WriteString(`.
Respond with a single JSON object and nothing else:
{"violation_detected": <bool>, "level_name": <one of the known levels or null>, "explanation": <short reason or null>}`)

	var user strings.Builder
	if len(contextMessages) > 0 {
		user.WriteString("Recent channel context:\n")
		for _, m := range contextMessages {
			user.WriteString(m)
			user.WriteString("\n")
		}
		user.WriteString("\n")
	}
	user.WriteString("Message to review:\n")
	user.WriteString(message)

	return []chatMessage{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: user.String()},
	}
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("classifier http error: status=%d body=%s", e.status, e.body)
}

func (c *Client) classifyOnce(ctx context.Context, payload []byte) (*Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("classifier request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("classifier read error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{status: resp.StatusCode, body: truncate(body, 500)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("classifier decode error: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	return parseVerdict(parsed.Choices[0].Message.Content)
}

// parseVerdict tolerates the model wrapping its JSON answer in a code fence
func parseVerdict(content string) (*Verdict, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var v Verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("classifier verdict decode error: %w", err)
	}
	return &v, nil
}

// isRetryable reports whether the failure is transient. Context
// cancellation and client-side 4xx answers are permanent; timeouts,
// network errors and 5xx/429 answers are worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500 || statusErr.status == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(err.Error(), "network error")
}

func truncate(b []byte, maxLen int) string {
	if len(b) > maxLen {
		return string(b[:maxLen]) + "...<truncated>"
	}
	return string(b)
}
