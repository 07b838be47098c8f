package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/model"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.engine.Jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendInternalError(c, "get job", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, optionally narrowed by ?target= and ?status=.
func (api *API) ListJobsHandler(c *gin.Context) {
	target := c.Query("target")

	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobs := api.engine.Jobs.ListJobs(target, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"target": target,
		"total":  len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":          api.engine.Jobs.GetMetrics(),
		"success_rate":     api.engine.Jobs.GetJobSuccessRate(),
		"current_workload": api.engine.Jobs.GetCurrentWorkload(),
	})
}
