package pitch

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pitch-backend/internal/extract"
	"pitch-backend/internal/llm"
	"pitch-backend/internal/shared/server/respond"
	"pitch-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

const (
	defaultVoiceTone   = "Professional"
	defaultVoiceLength = "Medium"
)

// Handler wires the pitch generation endpoint to the completion client.
type Handler struct {
	LLM llm.Client
}

// NewHandler constructs a Handler.
func NewHandler(client llm.Client) *Handler {
	return &Handler{LLM: client}
}

// RegisterRoutes attaches pitch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pitch", h.generate)
}

// generate runs the pipeline: parse multipart, normalize, extract resume
// text, build the prompt, call the completion endpoint and relay the result.
func (h *Handler) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "malformed multipart body", nil)
		return
	}
	raw := RawFields(c.Request.MultipartForm.Value)

	var (
		in          Input
		contextText string
	)
	if raw.First("inputMode") == "voice" {
		// Voice mode bypasses field validation: the transcription is the
		// sole content source and tone/length fall back to fixed defaults.
		in = Input{
			JobTitle:  raw.First("jobTitle"),
			Purpose:   raw.First("purpose"),
			FocusArea: raw.First("focusArea"),
			Audience:  raw.First("audience"),
			Tone:      raw.First("tone"),
			Length:    raw.First("length"),
		}
		if in.Tone == "" {
			in.Tone = defaultVoiceTone
		}
		if in.Length == "" {
			in.Length = defaultVoiceLength
		}
		contextText = raw.First("voiceTranscription")
	} else {
		var violations []Violation
		in, violations = Normalize(raw)
		if len(violations) > 0 {
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "invalid pitch request", violations)
			return
		}
		contextText = ChooseContext(h.resumeText(c), in.AdditionalContext)
	}

	prompt := BuildPrompt(in, contextText)

	stream, err := h.LLM.GeneratePitch(c.Request.Context(), prompt)
	if err != nil {
		var ue *llm.UpstreamError
		if errors.As(err, &ue) {
			respond.Error(c, ue.StatusCode, "upstream_error", "completion service error", ue.Detail)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to generate pitch", err.Error())
		return
	}
	defer stream.Close()

	// The streaming decision is final once the first body byte goes out.
	// A buffered result keeps the JSON contract; anything else streams.
	if buffered, ok := stream.(*llm.BufferedStream); ok {
		respond.OK(c, gin.H{"pitch": buffered.Text()})
		return
	}
	relayStream(c, stream)
}

// resumeText extracts text from the optional resume upload. Any extraction
// problem degrades to empty text so the pitch can still be generated from
// the remaining fields.
func (h *Handler) resumeText(c *gin.Context) string {
	fileHeader, err := c.FormFile("resumeFile")
	if err != nil {
		return ""
	}
	file, err := fileHeader.Open()
	if err != nil {
		telemetry.Info("pitch.resume_unreadable", map[string]any{"file": fileHeader.Filename, "error": err.Error()})
		return ""
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		telemetry.Info("pitch.resume_unreadable", map[string]any{"file": fileHeader.Filename, "error": err.Error()})
		return ""
	}

	result := extract.FromBytes(data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if result.Status != extract.StatusOK {
		fields := map[string]any{"file": fileHeader.Filename, "status": int(result.Status)}
		if result.Err != nil {
			fields["error"] = result.Err.Error()
		}
		telemetry.Info("pitch.extract_skipped", fields)
		return ""
	}
	return result.Text
}

// relayStream writes chunks to the caller as they arrive. A mid-stream
// upstream failure can only be logged: body bytes are already out.
func relayStream(c *gin.Context, stream llm.Stream) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)

	for {
		if c.Request.Context().Err() != nil {
			return
		}
		chunk, done, err := stream.Next()
		if err != nil {
			telemetry.Error("pitch.stream_failed", map[string]any{
				"request_id": c.GetString("requestId"),
				"error":      err.Error(),
			})
			return
		}
		if chunk != "" {
			if _, werr := c.Writer.WriteString(chunk); werr != nil {
				return
			}
			c.Writer.Flush()
		}
		if done {
			return
		}
	}
}
