package llm

import "testing"

func TestBufferedStreamSingleChunk(t *testing.T) {
	stream := NewBufferedStream("full text")

	chunk, done, err := stream.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk != "full text" || !done {
		t.Fatalf("expected final chunk with text, got chunk=%q done=%v", chunk, done)
	}

	chunk, done, err = stream.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk != "" || !done {
		t.Fatalf("expected exhausted stream, got chunk=%q done=%v", chunk, done)
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{StatusCode: 429, Detail: "quota exceeded"}
	if got := err.Error(); got != "upstream status 429: quota exceeded" {
		t.Fatalf("unexpected message: %q", got)
	}
}
