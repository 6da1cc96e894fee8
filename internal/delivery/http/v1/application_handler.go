package v1

import (
	"net/http"

	"careers-backend/internal/delivery/http/middleware"
	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	appUC domain.ApplicationUsecase
}

func NewApplicationHandler(protected *gin.RouterGroup, appUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{appUC: appUC}

	apps := protected.Group("/applications")
	{
		apps.POST("", handler.Apply)
		apps.GET("/mine", handler.ListMine)
	}
}

type ApplyRequest struct {
	JobID       int64  `json:"jobId" binding:"required"`
	CoverLetter string `json:"coverLetter"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Requires a saved profile. Applying locks the profile.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        request  body      ApplyRequest  true  "Application"
// @Success      201      {object}  response.Response{data=domain.Application}
// @Failure      400      {object}  response.ErrorBody
// @Failure      403      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("jobId is required"))
		return
	}

	app, err := h.appUC.Apply(c.Request.Context(), id, middleware.CandidateEmail(c), req.JobID, req.CoverLetter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// ListMine godoc
// @Summary      List own applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      401  {object}  response.ErrorBody
// @Router       /applications/mine [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	apps, err := h.appUC.ListMine(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}
