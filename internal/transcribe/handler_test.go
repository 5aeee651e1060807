package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pitch-backend/internal/llm"
)

type fakeLLM struct {
	text  string
	err   error
	calls int
	last  llm.TranscribeRequest
	block bool
}

func (f *fakeLLM) GeneratePitch(ctx context.Context, prompt string) (llm.Stream, error) {
	return nil, errors.New("not used")
}

func (f *fakeLLM) Transcribe(ctx context.Context, req llm.TranscribeRequest) (string, error) {
	f.calls++
	f.last = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func audioRequest(t *testing.T, fieldName, fileName string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fieldName != "" {
		fileWriter, err := writer.CreateFormFile(fieldName, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fileWriter.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestTranscribeSuccess(t *testing.T) {
	fake := &fakeLLM{text: "I led a team of five"}
	router := newTestRouter(NewHandler(fake))

	req := audioRequest(t, "file", "clip.webm", []byte("audio-bytes"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Text != "I led a team of five" {
		t.Fatalf("expected transcript, got %q", parsed.Text)
	}
	if fake.last.Filename != "clip.webm" {
		t.Fatalf("expected filename preserved, got %q", fake.last.Filename)
	}
	if string(fake.last.Audio) != "audio-bytes" {
		t.Fatalf("expected audio forwarded, got %q", fake.last.Audio)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	fake := &fakeLLM{}
	router := newTestRouter(NewHandler(fake))

	req := audioRequest(t, "", "", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", fake.calls)
	}
}

func TestTranscribeTimeout(t *testing.T) {
	fake := &fakeLLM{block: true}
	h := NewHandler(fake)
	h.Timeout = 25 * time.Millisecond
	router := newTestRouter(h)

	req := audioRequest(t, "file", "clip.webm", []byte("audio"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestTimeout {
		t.Fatalf("expected 408, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Error != "Timeout" {
		t.Fatalf("expected Timeout error body, got %q", parsed.Error)
	}
}

func TestTranscribeUpstreamErrorPassThrough(t *testing.T) {
	fake := &fakeLLM{err: &llm.UpstreamError{StatusCode: http.StatusTooManyRequests, Detail: "quota exceeded"}}
	router := newTestRouter(NewHandler(fake))

	req := audioRequest(t, "file", "clip.webm", []byte("audio"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Details != "quota exceeded" {
		t.Fatalf("expected upstream detail preserved, got %q", parsed.Details)
	}
}

func TestTranscribeUnexpectedError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("connection reset")}
	router := newTestRouter(NewHandler(fake))

	req := audioRequest(t, "file", "clip.webm", []byte("audio"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.Code, resp.Body.String())
	}
}
