package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Manshi-Rathour/FilesGPT/internal/service"
	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

type QueryHandler struct {
	answerSvc *service.AnswerService
}

func NewQueryHandler(answerSvc *service.AnswerService) *QueryHandler {
	return &QueryHandler{answerSvc: answerSvc}
}

type QueryRequest struct {
	Question   string `json:"question" binding:"required"`
	DocumentID string `json:"document_id"`
	TopK       int    `json:"top_k"`
}

// Query answers a question from the caller's ingested documents.
func (h *QueryHandler) Query(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answerReq := service.AnswerRequest{
		UserID:   userID,
		Question: req.Question,
		TopK:     req.TopK,
	}
	if req.DocumentID != "" {
		docID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
			return
		}
		answerReq.DocumentID = &docID
	}

	result, err := h.answerSvc.Answer(c.Request.Context(), answerReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, vectorstore.ErrInvalidScopeFilter):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmbeddingUnavailable),
			errors.Is(err, service.ErrGenerationUnavailable),
			errors.Is(err, vectorstore.ErrIndexUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
