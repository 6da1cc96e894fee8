package v1

import (
	"net/http"

	"careers-backend/internal/delivery/http/middleware"
	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	protected.GET("/profile", handler.GetProfile)
	protected.PUT("/profile", handler.UpsertProfile)
}

// GetProfile godoc
// @Summary      Get own profile
// @Description  Returns the profile (null when not created yet) and whether it is locked
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileView}
// @Failure      401  {object}  response.ErrorBody
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	view, err := h.profileUC.GetProfile(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", view)
}

// UpsertProfile godoc
// @Summary      Create or update own profile
// @Description  Rejected with 403 once the candidate has applied to any job
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ProfileInput  true  "Profile"
// @Success      200      {object}  response.Response{data=domain.ProfileView}
// @Failure      400      {object}  response.ErrorBody
// @Failure      403      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /profile [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	var input domain.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	view, err := h.profileUC.UpsertProfile(c.Request.Context(), id, middleware.CandidateEmail(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile saved", view)
}
