package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewFileHandler(fileService *service.FileService, maxUploadMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

func parseEntity(w http.ResponseWriter, entityType, entityID string) (domain.FileEntityType, uuid.UUID, bool) {
	t := domain.FileEntityType(entityType)
	if !t.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid entityType. Valid values: product, quote, order")
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(entityID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entityId: must be a valid UUID")
		return "", uuid.Nil, false
	}
	return t, id, true
}

// @Summary Upload file
// @Description Attaches a file to a product, quote or order. JPEG and PNG images get a thumbnail; the first image of a product becomes its picture.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param entityType formData string true "Owner type" Enums(product, quote, order)
// @Param entityId formData string true "Owner ID"
// @Success 201 {object} domain.FileDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	entityType, entityID, ok := parseEntity(w, r.FormValue("entityType"), r.FormValue("entityId"))
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	fileDTO, err := h.fileService.Upload(r.Context(), entityType, entityID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		handleError(w, h.logger, err, "upload file")
		return
	}

	respondJSON(w, http.StatusCreated, fileDTO)
}

// @Summary List files of a record
// @Tags Files
// @Produce json
// @Param entityType query string true "Owner type" Enums(product, quote, order)
// @Param entityId query string true "Owner ID"
// @Success 200 {array} domain.FileDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := parseEntity(w, r.URL.Query().Get("entityType"), r.URL.Query().Get("entityId"))
	if !ok {
		return
	}

	files, err := h.fileService.ListByEntity(r.Context(), entityType, entityID)
	if err != nil {
		handleError(w, h.logger, err, "list files")
		return
	}
	respondJSON(w, http.StatusOK, files)
}

// @Summary Get file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} domain.FileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "file")
	if !ok {
		return
	}

	fileDTO, err := h.fileService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get file")
		return
	}

	respondJSON(w, http.StatusOK, fileDTO)
}

// @Summary Download file
// @Tags Files
// @Produce application/octet-stream
// @Param id path string true "File ID"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// @Summary Download thumbnail
// @Tags Files
// @Produce image/jpeg
// @Produce image/png
// @Param id path string true "File ID"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id}/thumbnail [get]
func (h *FileHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, thumbnail bool) {
	id, ok := parseID(w, r, "id", "file")
	if !ok {
		return
	}

	reader, file, err := h.fileService.Download(r.Context(), id, thumbnail)
	if err != nil {
		handleError(w, h.logger, err, "download file")
		return
	}
	defer reader.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if thumbnail {
		w.Header().Set("Content-Disposition", "inline")
	} else {
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(file.Filename))
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("file download interrupted", zap.String("file_id", id.String()), zap.Error(err))
	}
}

// @Summary Delete file
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "file")
	if !ok {
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
