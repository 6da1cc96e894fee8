package v1

import (
	"errors"
	"io"
	"net/http"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadUC domain.UploadUsecase
	maxBytes int64
}

func NewUploadHandler(protected *gin.RouterGroup, limited gin.HandlerFunc, uploadUC domain.UploadUsecase, maxBytes int64) {
	handler := &UploadHandler{uploadUC: uploadUC, maxBytes: maxBytes}

	protected.POST("/uploads", limited, handler.Upload)
}

func errFileTooLarge() *apperror.AppError {
	return apperror.New(http.StatusRequestEntityTooLarge, "File too large", nil)
}

// Upload godoc
// @Summary      Upload resume or photo
// @Description  Validates the file by content, compresses images, and returns the public URL
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  query     string  true  "resume or photo"
// @Param        file  formData  file    true  "File"
// @Success      200   {object}  response.Response{data=domain.UploadResult}
// @Failure      400   {object}  response.ErrorBody
// @Failure      413   {object}  response.ErrorBody
// @Failure      503   {object}  response.ErrorBody
// @Router       /uploads [post]
// @Security     BearerAuth
func (h *UploadHandler) Upload(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	kind := domain.UploadKind(c.Query("kind"))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(errFileTooLarge())
			return
		}
		c.Error(apperror.BadRequest("file is required"))
		return
	}
	if fh.Size > h.maxBytes {
		c.Error(errFileTooLarge())
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Could not read file"))
		return
	}

	result, err := h.uploadUC.Upload(c.Request.Context(), id, kind, fh.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "File uploaded", result)
}
