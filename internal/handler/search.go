package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
)

// SearchHandler serves the core /api/search and /api/analyze routes
type SearchHandler struct {
	orchestrator *orchestrator.Orchestrator
}

// NewSearchHandler wires the orchestrator the search routes dispatch through
func NewSearchHandler(o *orchestrator.Orchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: o}
}

// Search handles POST /api/search: classifies intent, and for a search
// intent runs the full planner+executor pipeline; other intents are
// answered directly by the orchestrator.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errValidationFromBind(err))
		return
	}
	if appErr := validateSearchRequest(&req); appErr != nil {
		writeError(c, appErr)
		return
	}

	lang := types.Language(req.Language)
	channel := resolveChannel(req.Source)

	reply, err := h.orchestrator.Handle(c.Request.Context(), req.Query, lang, channel, req.Page, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, reply.Envelope)
}

// Analyze handles POST /api/analyze: returns the structured QueryPlan
// without running the Search Executor.
func (h *SearchHandler) Analyze(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errValidationFromBind(err))
		return
	}
	if appErr := validateSearchRequest(&req); appErr != nil {
		writeError(c, appErr)
		return
	}

	plan, err := h.orchestrator.Plan(c.Request.Context(), req.Query, types.Language(req.Language))
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, types.NewSuccessEnvelope(plan, nil))
}

func errValidationFromBind(err error) error {
	return validationError(err.Error())
}
