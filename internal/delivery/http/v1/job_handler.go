package v1

import (
	"net/http"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

// NewJobHandler registers the public job board. The group is expected to
// carry optional candidate auth so listings can report hasApplied.
func NewJobHandler(optional *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := optional.Group("/jobs")
	{
		jobs.GET("", handler.ListJobs)
		jobs.GET("/:id", handler.GetJob)
	}
}

// ListJobs godoc
// @Summary      List open jobs
// @Description  Open jobs, newest first. hasApplied is present when the caller is authenticated.
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.JobListing}
// @Router       /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobUC.ListOpen(c.Request.Context(), viewer(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// GetJob godoc
// @Summary      Get job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.JobListing}
// @Failure      404  {object}  response.ErrorBody
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobUC.GetJob(c.Request.Context(), id, viewer(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}
