package llm

import (
	"context"
	"fmt"
)

// Client abstracts the hosted AI providers behind the two proxied operations.
type Client interface {
	// GeneratePitch sends the built prompt to the completion endpoint and
	// returns the generated text as an ordered stream of chunks. The stream
	// may hold a single chunk when the upstream does not deliver
	// incrementally.
	GeneratePitch(ctx context.Context, prompt string) (Stream, error)

	// Transcribe forwards an audio clip to the transcription endpoint and
	// returns the transcript text.
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// Stream yields generated text chunks in arrival order.
type Stream interface {
	// Next returns the next chunk. done reports stream exhaustion; a chunk
	// may accompany done on the final call.
	Next() (chunk string, done bool, err error)
	Close() error
}

// TranscribeRequest carries one audio clip for transcription.
type TranscribeRequest struct {
	Audio    []byte
	Filename string
	MimeType string
}

// UpstreamError preserves a non-success response from a hosted endpoint so
// handlers can relay the original status and detail to the caller.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Detail)
}

// BufferedStream adapts an already-complete text into the Stream contract as
// a sequence of length one.
type BufferedStream struct {
	text string
	read bool
}

// NewBufferedStream wraps text in a single-chunk stream.
func NewBufferedStream(text string) *BufferedStream {
	return &BufferedStream{text: text}
}

// Text returns the full buffered text without consuming the stream.
func (s *BufferedStream) Text() string { return s.text }

func (s *BufferedStream) Next() (string, bool, error) {
	if s.read {
		return "", true, nil
	}
	s.read = true
	return s.text, true, nil
}

func (s *BufferedStream) Close() error { return nil }
