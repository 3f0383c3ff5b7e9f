package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manshi-Rathour/FilesGPT/internal/repository"
	"github.com/Manshi-Rathour/FilesGPT/internal/service"
)

type AccountHandler struct {
	lifecycleSvc *service.LifecycleService
	userRepo     *repository.UserRepository
}

func NewAccountHandler(lifecycleSvc *service.LifecycleService, userRepo *repository.UserRepository) *AccountHandler {
	return &AccountHandler{lifecycleSvc: lifecycleSvc, userRepo: userRepo}
}

// Delete removes the account and everything it owns: vectors, upload
// records, transcripts, then the user row itself.
func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	report, err := h.lifecycleSvc.DeleteAllForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "report": report})
}
