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

// CategoryHandler serves GET /api/search/category/:categoryId: a
// category-scoped browse that skips the classifier/planner and goes
// straight to the Search Executor with a pre-built plan.
type CategoryHandler struct {
	executor interfaces.SearchExecutor
	catalog  interfaces.CatalogIndex
	renderer interfaces.ChannelRenderer
}

// NewCategoryHandler wires the executor, catalog, and HTTP renderer the
// category browse route needs
func NewCategoryHandler(executor interfaces.SearchExecutor, catalog interfaces.CatalogIndex, renderer interfaces.ChannelRenderer) *CategoryHandler {
	return &CategoryHandler{executor: executor, catalog: catalog, renderer: renderer}
}

func (h *CategoryHandler) Browse(c *gin.Context) {
	categoryID := c.Param("categoryId")
	category, ok := h.catalog.CategoryBySlug(categoryID)
	if !ok {
		writeError(c, apperrors.NewNotFoundError("unknown category"))
		return
	}

	lang := types.Language(c.DefaultQuery("language", string(types.LanguageArabic)))
	if !lang.Valid() {
		writeError(c, apperrors.NewValidationError("language must be one of: ar, en"))
		return
	}

	page := parseIntDefault(c.Query("page"), 1)
	limit := parseIntDefault(c.Query("limit"), 20)
	if page < 1 || page > types.MaxPaginationPage {
		writeError(c, apperrors.NewValidationError("page out of range"))
		return
	}
	if limit < 1 || limit > types.MaxPaginationLimit {
		writeError(c, apperrors.NewValidationError("limit out of range"))
		return
	}

	plan := &types.QueryPlan{MainKeyword: category.Name(lang), ExpandedKeywords: []string{category.Name(lang)}}
	if category.IsLeaf {
		plan.LeafCategory = category.Slug
	} else {
		plan.SuggestedCategories = []string{category.Slug}
	}
	if txType := c.Query("transactionType"); txType != "" {
		plan.TransactionType = types.TransactionTypeSlug(txType)
	}
	if cityID := c.Query("cityId"); cityID != "" {
		plan.LocationCityID = cityID
	}

	results, strategy, total, err := h.executor.Execute(c.Request.Context(), plan, lang, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	reply, err := h.renderer.RenderResults(c.Request.Context(), results, strategy, total, lang)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reply.Envelope)
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
