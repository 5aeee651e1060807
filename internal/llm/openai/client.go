package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pitch-backend/internal/llm"
)

const systemPrompt = "You are an expert career writer."

// Config carries the provider settings for both hosted endpoints.
type Config struct {
	// Azure OpenAI chat completions.
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	// OpenAI audio transcriptions.
	TranscribeURL   string
	TranscribeKey   string
	TranscribeModel string
}

// Client implements llm.Client against Azure OpenAI (chat) and OpenAI (audio).
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Client, rejecting incomplete configuration.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_KEY is required")
	}
	if strings.TrimSpace(cfg.Deployment) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_DEPLOYMENT is required")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_VERSION is required")
	}
	if strings.TrimSpace(cfg.TranscribeKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.TranscribeModel) == "" {
		cfg.TranscribeModel = "whisper-1"
	}
	if strings.TrimSpace(cfg.TranscribeURL) == "" {
		cfg.TranscribeURL = "https://api.openai.com/v1/audio/transcriptions"
	}
	return &Client{
		cfg: cfg,
		// The completion call has no per-request deadline; the transport
		// timeout is the only bound.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) chatURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)
}

// GeneratePitch issues the chat completion with streaming requested. When the
// upstream honors the stream flag the returned Stream relays deltas as they
// arrive; otherwise the full completion is wrapped in a single-chunk stream.
func (c *Client) GeneratePitch(ctx context.Context, prompt string) (llm.Stream, error) {
	reqBody := chatRequest{
		Model: c.cfg.Deployment,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: true,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &llm.UpstreamError{StatusCode: resp.StatusCode, Detail: upstreamDetail(body)}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "text/event-stream") {
		return newSSEStream(resp.Body), nil
	}

	// Some deployments ignore the stream flag and answer with a plain
	// completion body. Collapse it to a single chunk.
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("completion response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("completion error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("completion response missing choices")
	}
	return llm.NewBufferedStream(strings.TrimSpace(parsed.Choices[0].Message.Content)), nil
}

func upstreamDetail(body []byte) string {
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// sseStream decodes the event-stream framing of a streamed chat completion.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &sseStream{body: body, scanner: scanner}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (s *sseStream) Next() (string, bool, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return "", true, nil
		}

		var parsed streamChunk
		if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
			return "", false, fmt.Errorf("stream chunk parse: %w", err)
		}
		// Azure emits housekeeping records with empty deltas; skip them.
		if len(parsed.Choices) == 0 || parsed.Choices[0].Delta.Content == "" {
			continue
		}
		return parsed.Choices[0].Delta.Content, false, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", false, err
	}
	return "", true, nil
}

func (s *sseStream) Close() error {
	return s.body.Close()
}

var _ llm.Client = (*Client)(nil)
