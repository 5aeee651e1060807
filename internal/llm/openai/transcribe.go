package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"pitch-backend/internal/llm"
)

// Transcribe repackages the audio clip as a multipart body for the hosted
// transcription endpoint and returns the transcript text. The caller owns
// the deadline via ctx; a non-success upstream response comes back as an
// *llm.UpstreamError with the original status and detail.
func (c *Client) Transcribe(ctx context.Context, in llm.TranscribeRequest) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.cfg.TranscribeModel); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}

	filename := in.Filename
	if filename == "" {
		filename = "audio.webm"
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(in.Audio); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TranscribeURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.TranscribeKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(raw))}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("transcription response parse: %w", err)
	}
	return parsed.Text, nil
}
