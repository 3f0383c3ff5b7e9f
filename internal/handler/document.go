package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Manshi-Rathour/FilesGPT/internal/service"
)

type DocumentHandler struct {
	uploadSvc    *service.UploadService
	lifecycleSvc *service.LifecycleService
	maxUpload    int64
}

func NewDocumentHandler(uploadSvc *service.UploadService, lifecycleSvc *service.LifecycleService, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{uploadSvc: uploadSvc, lifecycleSvc: lifecycleSvc, maxUpload: maxUpload}
}

// UploadFile accepts a multipart file, extracts its text and ingests it.
func (h *DocumentHandler) UploadFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide a file"})
		return
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	upload, chunks, err := h.uploadSvc.UploadFile(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Processed " + upload.Source,
		"document_id": upload.ID,
		"chunks":      chunks,
	})
}

type WebsiteUploadRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// UploadWebsite fetches a page, extracts its text and ingests it.
func (h *DocumentHandler) UploadWebsite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req WebsiteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, chunks, err := h.uploadSvc.UploadWebsite(c.Request.Context(), userID, req.URL)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Processed text from " + upload.Source,
		"document_id": upload.ID,
		"chunks":      chunks,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, offset := pagination(c)
	uploads, total, err := h.uploadSvc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": uploads, "total": total})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	upload, err := h.uploadSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, upload)
}

// Delete cascades removal of the document's vectors, metadata and history.
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	exists, err := h.uploadSvc.Exists(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	report, err := h.lifecycleSvc.DeleteDocument(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "report": report})
}

func respondIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoExtractableText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text could be extracted from the provided input"})
	case errors.Is(err, service.ErrEmbeddingUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embedding service temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := atoiParam(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := atoiParam(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
