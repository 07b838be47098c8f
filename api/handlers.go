package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/engine"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/recategorize"
	"github.com/gcbaptista/markets-feeds/model"
)

// API holds dependencies for API handlers.
type API struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(eng *engine.Engine, logger *zap.Logger) *API {
	return &API{engine: eng, logger: logging.OrNop(logger)}
}

// SetupRoutes defines all the API routes.
func SetupRoutes(router *gin.Engine, eng *engine.Engine, logger *zap.Logger) {
	apiHandler := NewAPI(eng, logger)

	metrics := NewMetrics(eng)
	router.Use(metrics.Middleware())
	router.GET("/metrics", metrics.Handler())

	router.GET("/health", apiHandler.HealthCheckHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
	}

	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/search", apiHandler.SearchHandler)
		apiRoutes.GET("/articles", apiHandler.ArticlesHandler)
		apiRoutes.GET("/categories", apiHandler.CategoriesHandler)
		apiRoutes.GET("/sources", apiHandler.SourcesHandler)
		apiRoutes.GET("/trending", apiHandler.TrendingHandler)
		apiRoutes.GET("/suggestions", apiHandler.SuggestionsHandler)

		admin := apiRoutes.Group("/admin")
		{
			admin.POST("/clear-cache", apiHandler.ClearCacheHandler)
			admin.GET("/recategorization", apiHandler.RecategorizationHandler)
			admin.GET("/cache-metrics", apiHandler.CacheMetricsHandler)
			admin.GET("/search-analytics", apiHandler.SearchAnalyticsHandler)
		}
	}
}

// HealthCheckHandler reports liveness plus index readiness and cache health.
func (api *API) HealthCheckHandler(c *gin.Context) {
	status := api.engine.Status()

	overall := "healthy"
	if !status.Index.Ready || status.Cache.Status != model.CacheHealthy {
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    overall,
		"service":   "markets-feeds",
		"timestamp": time.Now().Unix(),
		"index":     status.Index,
		"cache":     status.Cache,
	})
}

// CategoryCount is one entry of the category listing.
type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoriesHandler lists every category present in the corpus, largest first.
func (api *API) CategoriesHandler(c *gin.Context) {
	counts, err := api.engine.Loader.CategoryCounts(c.Request.Context())
	if err != nil {
		SendDomainError(c, "categories", err)
		return
	}

	categories := make([]CategoryCount, 0, len(counts))
	for id, n := range counts {
		categories = append(categories, CategoryCount{ID: id, Name: api.engine.Taxonomy.DisplayName(id), Count: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].ID < categories[j].ID
	})

	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

// SourcesHandler returns article counts per source id.
func (api *API) SourcesHandler(c *gin.Context) {
	counts, err := api.engine.Loader.SourceCounts(c.Request.Context())
	if err != nil {
		SendDomainError(c, "sources", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": counts, "total": len(counts)})
}

// ClearCacheHandler drops every cache, reloads the corpus, and reports its size.
func (api *API) ClearCacheHandler(c *gin.Context) {
	total, err := api.engine.Refresh(c.Request.Context())
	if err != nil {
		SendDomainError(c, "cache refresh", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Caches cleared and corpus reloaded",
		"totalArticles": total,
		"buildJobId":    api.engine.Loader.LastBuildJob(),
	})
}

// RecategorizationHandler returns the statistics and markdown report of the last corpus load.
func (api *API) RecategorizationHandler(c *gin.Context) {
	if _, err := api.engine.Loader.LoadData(c.Request.Context()); err != nil {
		SendDomainError(c, "recategorization", err)
		return
	}

	stats := api.engine.Loader.RecategorizationStats()
	c.JSON(http.StatusOK, gin.H{
		"stats":  stats,
		"report": recategorize.GenerateReport(stats, api.engine.Taxonomy),
	})
}

// CacheMetricsHandler returns per-cache counters and the health summary.
func (api *API) CacheMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Status())
}

// SearchAnalyticsHandler returns the query analytics dashboard.
func (api *API) SearchAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Analytics.Dashboard())
}
