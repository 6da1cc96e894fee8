package v1

import (
	"net/http"
	"strconv"
	"strings"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

// NewAdminHandler registers admin routes. public carries only the login
// endpoint; protected must be gated by the admin session check.
func NewAdminHandler(public *gin.RouterGroup, protected *gin.RouterGroup, limited gin.HandlerFunc, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	public.POST("/admin/login", limited, handler.Login)

	admin := protected.Group("/admin")
	{
		admin.GET("/jobs", handler.ListJobs)
		admin.POST("/jobs", handler.CreateJob)
		admin.PUT("/jobs/:id", handler.UpdateJob)
		admin.DELETE("/jobs/:id", handler.DeleteJob)

		admin.GET("/applications", handler.ListApplications)
		admin.GET("/applications/export", handler.ExportApplications)
		admin.PATCH("/applications/:id/status", handler.UpdateApplicationStatus)
		admin.DELETE("/applications/:id", handler.DeleteApplication)

		admin.GET("/candidates", handler.ListCandidates)
		admin.DELETE("/candidates/:id", handler.DeleteCandidate)
	}
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Six-digit authenticator code; required only when a TOTP secret is configured.
	OTP string `json:"otp"`
}

type UpdateStatusRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required"`
}

// Login godoc
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      AdminLoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=domain.AdminSession}
// @Failure      400      {object}  response.ErrorBody
// @Failure      401      {object}  response.ErrorBody
// @Failure      429      {object}  response.ErrorBody
// @Router       /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Email and password are required"))
		return
	}
	session, err := h.adminUC.Login(c.Request.Context(), req.Email, req.Password, req.OTP, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", session)
}

// ListJobs godoc
// @Summary      List all jobs
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /admin/jobs [get]
// @Security     BearerAuth
func (h *AdminHandler) ListJobs(c *gin.Context) {
	jobs, err := h.adminUC.ListJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// CreateJob godoc
// @Summary      Create job
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      domain.JobInput  true  "Job"
// @Success      201      {object}  response.Response{data=domain.Job}
// @Failure      400      {object}  response.ErrorBody
// @Router       /admin/jobs [post]
// @Security     BearerAuth
func (h *AdminHandler) CreateJob(c *gin.Context) {
	var input domain.JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	job, err := h.adminUC.CreateJob(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// UpdateJob godoc
// @Summary      Update job
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Job ID"
// @Param        request  body      domain.JobInput  true  "Job"
// @Success      200      {object}  response.Response{data=domain.Job}
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Router       /admin/jobs/{id} [put]
// @Security     BearerAuth
func (h *AdminHandler) UpdateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input domain.JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	job, err := h.adminUC.UpdateJob(c.Request.Context(), id, input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// DeleteJob godoc
// @Summary      Delete job
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.ErrorBody
// @Router       /admin/jobs/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.adminUC.DeleteJob(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}

// ListApplications godoc
// @Summary      List applications
// @Tags         admin
// @Produce      json
// @Param        jobId     query     int     false  "Filter by job"
// @Param        status    query     string  false  "pending, reviewed, rejected or selected"
// @Param        page      query     int     false  "Page number (default: 1)"
// @Param        pageSize  query     int     false  "Items per page (default: 20, max: 100)"
// @Success      200       {object}  response.Response{data=domain.PaginatedResult[domain.Application]}
// @Failure      400       {object}  response.ErrorBody
// @Router       /admin/applications [get]
// @Security     BearerAuth
func (h *AdminHandler) ListApplications(c *gin.Context) {
	jobID, ok := optionalJobID(c)
	if !ok {
		return
	}
	filter := domain.ApplicationFilter{
		JobID:    jobID,
		Status:   domain.ApplicationStatus(strings.ToLower(c.Query("status"))),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}

	result, err := h.adminUC.ListApplications(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", result)
}

// UpdateApplicationStatus godoc
// @Summary      Update application status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Application ID"
// @Param        request  body      UpdateStatusRequest  true  "Status"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Router       /admin/applications/{id}/status [patch]
// @Security     BearerAuth
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status is required"))
		return
	}
	if err := h.adminUC.UpdateApplicationStatus(c.Request.Context(), id, req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", gin.H{"id": id, "status": req.Status})
}

// DeleteApplication godoc
// @Summary      Delete application
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.ErrorBody
// @Router       /admin/applications/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteApplication(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.adminUC.DeleteApplication(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application deleted", nil)
}

// ExportApplications godoc
// @Summary      Export applications
// @Description  Download applicants with their profile data as CSV or Excel
// @Tags         admin
// @Produce      application/octet-stream
// @Param        format  query     string  false  "csv or xlsx (default: xlsx)"
// @Param        jobId   query     int     false  "Filter by job"
// @Success      200     {file}    file
// @Failure      400     {object}  response.ErrorBody
// @Router       /admin/applications/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportApplications(c *gin.Context) {
	jobID, ok := optionalJobID(c)
	if !ok {
		return
	}
	file, err := h.adminUC.ExportApplications(c.Request.Context(), strings.ToLower(c.Query("format")), jobID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ListCandidates godoc
// @Summary      List candidates
// @Tags         admin
// @Produce      json
// @Param        page      query     int  false  "Page number (default: 1)"
// @Param        pageSize  query     int  false  "Items per page (default: 20, max: 100)"
// @Success      200       {object}  response.Response{data=domain.PaginatedResult[domain.CandidateSummary]}
// @Router       /admin/candidates [get]
// @Security     BearerAuth
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	result, err := h.adminUC.ListCandidates(c.Request.Context(), queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates retrieved", result)
}

// DeleteCandidate godoc
// @Summary      Delete candidate
// @Description  Removes the candidate with their profile and applications
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /admin/candidates/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteCandidate(c *gin.Context) {
	id, err := domain.ParseCandidateID(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid candidate id"))
		return
	}
	if err := h.adminUC.DeleteCandidate(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}

// queryInt returns 0 for absent or malformed values; the usecase applies
// defaults.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func optionalJobID(c *gin.Context) (*int64, bool) {
	raw := c.Query("jobId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid jobId"))
		return nil, false
	}
	return &id, true
}
