package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitch-backend/internal/llm"
	"pitch-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires the transcription endpoint to the transcription client.
type Handler struct {
	LLM llm.Client

	// Timeout bounds the upstream call. Defaults to 60s.
	Timeout time.Duration
}

// NewHandler constructs a Handler with the default deadline.
func NewHandler(client llm.Client) *Handler {
	return &Handler{LLM: client, Timeout: 60 * time.Second}
}

// RegisterRoutes attaches transcription routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/transcribe", h.transcribe)
}

// transcribe forwards the uploaded audio clip to the transcription endpoint.
// Error bodies follow the flat {error, details} contract the recording
// widget expects, not the standard envelope.
func (h *Handler) transcribe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file uploaded."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read audio file.", "details": err.Error()})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read audio file.", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	text, err := h.LLM.Transcribe(ctx, llm.TranscribeRequest{
		Audio:    audio,
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	requestID := c.GetString("requestId")

	if errors.Is(err, context.DeadlineExceeded) {
		telemetry.Error("transcribe.timeout", map[string]any{"request_id": requestID})
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Timeout", "details": "transcription request timed out"})
		return
	}

	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		telemetry.Error("transcribe.upstream_error", map[string]any{
			"request_id": requestID,
			"status":     ue.StatusCode,
			"details":    ue.Detail,
		})
		c.JSON(ue.StatusCode, gin.H{"error": "Transcription API error", "details": ue.Detail})
		return
	}

	telemetry.Error("transcribe.failed", map[string]any{"request_id": requestID, "error": err.Error()})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "details": err.Error()})
}
