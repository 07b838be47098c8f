package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/model"
)

// SearchHandler ranks articles for q with optional category, source, priority, and date filters.
// A blank q lists the filtered corpus newest first.
func (api *API) SearchHandler(c *gin.Context) {
	params, validation := ParseSearchParams(c)
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return
	}

	result, err := api.engine.Loader.Search(c.Request.Context(), params.Query, params.Filters, params.Page, params.Limit)
	if err != nil {
		SendDomainError(c, "search", err)
		return
	}

	api.logger.Debug("Search served",
		zap.String("query", params.Query),
		zap.Int("total", result.Total),
		zap.Int64("took_ms", result.Took),
		zap.String("query_id", result.QueryID))
	c.JSON(http.StatusOK, result)
}

// ArticlesHandler pages through the corpus, or one category of it.
func (api *API) ArticlesHandler(c *gin.Context) {
	params, validation := ParseSearchParams(c)
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return
	}

	ctx := c.Request.Context()
	var (
		page model.Page[model.Article]
		err  error
	)
	if category := c.Query("category"); category != "" {
		page, err = api.engine.Loader.CategoryPage(ctx, category, params.Page, params.Limit)
	} else {
		page, err = api.engine.Loader.LoadPage(ctx, params.Page, params.Limit)
	}
	if err != nil {
		SendDomainError(c, "article listing", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// TrendingHandler returns the most frequent key terms of the last days (default 7).
func (api *API) TrendingHandler(c *gin.Context) {
	validation := &ValidationResult{Valid: true}
	days := intParam(c, "days", 0, 1, validation)
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return
	}

	terms, err := api.engine.Loader.TrendingTerms(c.Request.Context(), days)
	if err != nil {
		SendDomainError(c, "trending terms", err)
		return
	}

	if days == 0 {
		days = api.engine.Settings.TrendingDays
	}
	c.JSON(http.StatusOK, gin.H{"terms": terms, "days": days})
}

// SuggestionsHandler completes a partial query from the indexed terms.
func (api *API) SuggestionsHandler(c *gin.Context) {
	suggestions, err := api.engine.Loader.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		SendDomainError(c, "suggestions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "query": c.Query("q")})
}
