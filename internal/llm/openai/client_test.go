package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pitch-backend/internal/llm"
)

func testClient(t *testing.T, upstream string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Endpoint:      upstream,
		APIKey:        "test-key",
		Deployment:    "gpt-test",
		APIVersion:    "2024-02-01",
		TranscribeURL: upstream + "/v1/audio/transcriptions",
		TranscribeKey: "test-key",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func collect(t *testing.T, stream llm.Stream) []string {
	t.Helper()
	defer stream.Close()
	var chunks []string
	for {
		chunk, done, err := stream.Next()
		if err != nil {
			t.Fatalf("stream next: %v", err)
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if done {
			return chunks
		}
	}
}

func TestGeneratePitchStreaming(t *testing.T) {
	var gotBody chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("expected api-key header, got %q", r.Header.Get("api-key"))
		}
		if !strings.Contains(r.URL.RawQuery, "api-version=2024-02-01") {
			t.Errorf("expected api-version query, got %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	stream, err := client.GeneratePitch(context.Background(), "build me a pitch")
	if err != nil {
		t.Fatalf("generate pitch: %v", err)
	}

	chunks := collect(t, stream)
	if len(chunks) != 2 || chunks[0] != "Hello" || chunks[1] != " world" {
		t.Fatalf("expected ordered chunks, got %v", chunks)
	}

	if !gotBody.Stream {
		t.Fatal("expected stream flag in request")
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != systemPrompt {
		t.Fatalf("unexpected system message: %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "build me a pitch" {
		t.Fatalf("unexpected user message: %+v", gotBody.Messages[1])
	}
}

func TestGeneratePitchBufferedFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Full pitch text"}}]}`)
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	stream, err := client.GeneratePitch(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate pitch: %v", err)
	}

	buffered, ok := stream.(*llm.BufferedStream)
	if !ok {
		t.Fatalf("expected buffered stream, got %T", stream)
	}
	if buffered.Text() != "Full pitch text" {
		t.Fatalf("expected full text, got %q", buffered.Text())
	}
}

func TestGeneratePitchUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	_, err := client.GeneratePitch(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}

	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if ue.StatusCode != http.StatusTooManyRequests || ue.Detail != "rate limited" {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
}

func TestNewClientRejectsIncompleteConfig(t *testing.T) {
	_, err := NewClient(Config{APIKey: "k", Deployment: "d", APIVersion: "v", TranscribeKey: "k"})
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}
