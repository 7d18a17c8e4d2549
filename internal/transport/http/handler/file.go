package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studynotes/internal/app"
	"studynotes/internal/transport/http/middleware"
	"studynotes/internal/transport/http/response"
)

type FileHandler struct {
	fileService    *app.FileService
	maxUploadBytes int64
}

func NewFileHandler(fileService *app.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxUploadBytes: maxUploadBytes}
}

func (h *FileHandler) List(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	files, err := h.fileService.List(c.Request.Context(), username)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	response.OK(c, gin.H{"files": files})
}

// Upload accepts a multipart "file" field and queues an ingestion run for
// it. The response carries the run id to poll.
func (h *FileHandler) Upload(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "file too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	defer file.Close()

	status, err := h.fileService.Upload(c.Request.Context(), username, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeUpstream, "queue file for ingestion failed")
		}
		return
	}
	response.OK(c, status)
}

func (h *FileHandler) Delete(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid file id")
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), username, uint(id)); err != nil {
		switch {
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete file failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted": id})
}

func (h *FileHandler) GetRun(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	status, err := h.fileService.GetRun(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrRunNotFound):
			response.Error(c, http.StatusNotFound, response.CodeRunNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch run failed")
		}
		return
	}
	response.OK(c, status)
}
