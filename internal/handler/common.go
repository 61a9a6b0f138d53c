// Package handler wires the gin HTTP surface onto the Orchestrator,
// Query Planner, and Speech Gateway: input validation and response
// envelope construction live here, everything else is delegated.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/types"
)

// writeJSON encodes an envelope with sonic rather than gin's default
// encoding/json-backed c.JSON, matching the pack's fast-path JSON idiom.
func writeJSON(c *gin.Context, status int, envelope *types.ResponseEnvelope) {
	body, err := sonic.Marshal(envelope)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", []byte(`{"success":false}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func writeError(c *gin.Context, err error) {
	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalServerError(err.Error())
	}
	if appErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}
	requestID, _ := c.Get("RequestID")
	requestIDStr, _ := requestID.(string)
	writeJSON(c, appErr.HTTPCode, types.NewErrorEnvelope(strconv.Itoa(int(appErr.Code)), appErr.Message, appErr.Details, requestIDStr))
}

// searchRequest is the shared body shape for /search and /analyze
type searchRequest struct {
	Query   string   `json:"query" binding:"required"`
	Language string  `json:"language"`
	Source  string   `json:"source"`
	UserID  string   `json:"userId"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Filters []string `json:"filters"`
}

// validateSearchRequest enforces the search request's field-level
// constraints, returning a Validation AppError describing the first
// violation found.
func validateSearchRequest(req *searchRequest) *apperrors.AppError {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return apperrors.NewValidationError("query must not be empty")
	}
	if len([]rune(query)) > types.MaxQueryLength {
		return apperrors.NewValidationError("query exceeds maximum length")
	}

	if req.Language == "" {
		req.Language = string(types.LanguageArabic)
	}
	if !types.Language(req.Language).Valid() {
		return apperrors.NewValidationError("language must be one of: ar, en")
	}

	if req.Source == "" {
		req.Source = string(types.SourceAPI)
	}
	if !types.Source(req.Source).Valid() {
		return apperrors.NewValidationError("unrecognized source")
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 1 || req.Page > types.MaxPaginationPage {
		return apperrors.NewValidationError("page out of range")
	}

	if req.Limit == 0 {
		req.Limit = 20
	}
	if req.Limit < 1 || req.Limit > types.MaxPaginationLimit {
		return apperrors.NewValidationError("limit out of range")
	}

	return nil
}

func validationError(message string) *apperrors.AppError {
	return apperrors.NewValidationError(message)
}

func resolveChannel(source string) types.Channel {
	switch types.Source(source) {
	case types.SourceTelegram:
		return types.ChannelTelegram
	case types.SourceWhatsApp:
		return types.ChannelWhatsApp
	default:
		return types.ChannelHTTP
	}
}
