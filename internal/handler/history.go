package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Manshi-Rathour/FilesGPT/internal/model"
	"github.com/Manshi-Rathour/FilesGPT/internal/repository"
)

type HistoryHandler struct {
	historyRepo *repository.HistoryRepository
}

func NewHistoryHandler(historyRepo *repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{historyRepo: historyRepo}
}

type SaveHistoryRequest struct {
	DocumentID string          `json:"document_id"`
	Source     string          `json:"source"`
	Messages   []model.Message `json:"messages" binding:"required"`
}

func (h *HistoryHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req SaveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history := &model.ChatHistory{
		UserID:   userID,
		Source:   req.Source,
		Messages: req.Messages,
	}
	if req.DocumentID != "" {
		docID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
			return
		}
		history.DocumentID = &docID
	}

	if err := h.historyRepo.Create(c.Request.Context(), history); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "id": history.ID})
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit := 50
	if v, err := atoiParam(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	histories, err := h.historyRepo.FindByUserID(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"histories": histories})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	history, err := h.historyRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if history.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}

	c.JSON(http.StatusOK, history)
}
