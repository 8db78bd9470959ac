package n8n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// n8n requires the resume call for a waiting workflow within its own window;
// a hung instance should not tie up the invocation longer than this.
const requestTimeout = 10 * time.Second

// StatusError is returned when n8n answered with a non-2xx status. Body is
// kept for logging only and is never shown to users.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("n8n returned status %d", e.StatusCode)
}

// ConnectionError is returned when no HTTP response was obtained at all:
// DNS failure, connection refused, or the request timing out.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "could not connect to n8n: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Client talks to a single n8n instance's webhook-waiting endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client for the given n8n base URL. Trailing slashes are
// stripped so WebhookURL never produces a double slash.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// WebhookURL returns the resume endpoint for a waiting execution.
func (c *Client) WebhookURL(executionID string) string {
	return fmt.Sprintf("%s/webhook-waiting/%s", c.baseURL, executionID)
}

type metadataPayload struct {
	Metadata        map[string]string `json:"metadata"`
	TranscriptionID string            `json:"transcription_id"`
}

// SendMetadata posts the speaker map and transcription ID to the waiting
// execution. A single attempt is made, no retries. Non-2xx responses come
// back as *StatusError, transport failures as *ConnectionError; anything
// else (e.g. a payload that fails to encode) is returned as a plain error.
func (c *Client) SendMetadata(executionID string, speakers map[string]string, transcriptionID string) error {
	body, err := json.Marshal(metadataPayload{
		Metadata:        speakers,
		TranscriptionID: transcriptionID,
	})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	resp, err := c.httpClient.Post(c.WebhookURL(executionID), "application/json", bytes.NewReader(body))
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}
