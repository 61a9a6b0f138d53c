package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// VoiceHandler serves POST /api/search/voice: transcribes an uploaded
// audio file, then runs the transcription through the same pipeline a
// text query would take.
type VoiceHandler struct {
	orchestrator *orchestrator.Orchestrator
	speech       interfaces.SpeechGateway
}

// NewVoiceHandler wires the orchestrator and Speech Gateway the voice route needs
func NewVoiceHandler(o *orchestrator.Orchestrator, speech interfaces.SpeechGateway) *VoiceHandler {
	return &VoiceHandler{orchestrator: o, speech: speech}
}

func (h *VoiceHandler) Search(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		writeError(c, apperrors.NewValidationError("missing audio field"))
		return
	}
	if fileHeader.Size > types.MaxVoiceAudioBytes {
		writeError(c, apperrors.NewUnsupportedMediaError("audio file exceeds the maximum allowed size"))
		return
	}

	lang := types.Language(c.DefaultPostForm("language", string(types.LanguageArabic)))
	if !lang.Valid() {
		writeError(c, apperrors.NewValidationError("language must be one of: ar, en"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, apperrors.NewInternalServerError("could not read uploaded audio"))
		return
	}
	defer file.Close()

	transcription, err := h.speech.Transcribe(c.Request.Context(), file, fileHeader.Filename, lang)
	if err != nil {
		writeError(c, err)
		return
	}

	page := 1
	limit := 20
	if v := c.PostForm("page"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			page = n
		}
	}
	if v := c.PostForm("limit"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			limit = n
		}
	}

	reply, err := h.orchestrator.Handle(c.Request.Context(), transcription, lang, types.ChannelHTTP, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	if reply.Envelope != nil && reply.Envelope.Success {
		if data, ok := reply.Envelope.Data.(map[string]any); ok {
			data["transcription"] = transcription
		}
	}

	writeJSON(c, http.StatusOK, reply.Envelope)
}
