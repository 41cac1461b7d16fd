package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/validation"

	"github.com/gin-gonic/gin"
)

// EngagementService records viewer activity.
type EngagementService interface {
	Watch(ctx context.Context, userID, videoID int64) error
	Like(ctx context.Context, userID, videoID int64) (int, error)
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
}

// EngagementHandler handles watch, like and user requests.
type EngagementHandler struct {
	engagement EngagementService
}

// NewEngagementHandler creates a new EngagementHandler instance.
func NewEngagementHandler(engagement EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

func pairParams(c *gin.Context) (userID, videoID int64, ok bool) {
	userID, err := validation.ParseID(c.Param("userID"))
	if err != nil {
		badRequest(c, "invalid user id")
		return 0, 0, false
	}
	videoID, err = validation.ParseID(c.Param("videoID"))
	if err != nil {
		badRequest(c, "invalid video id")
		return 0, 0, false
	}
	return userID, videoID, true
}

// Watch handles POST /watch/:userID/:videoID.
func (h *EngagementHandler) Watch(c *gin.Context) {
	userID, videoID, ok := pairParams(c)
	if !ok {
		return
	}

	if err := h.engagement.Watch(c.Request.Context(), userID, videoID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("User %d watched video %d", userID, videoID),
	})
}

// Like handles POST /like/:userID/:videoID.
func (h *EngagementHandler) Like(c *gin.Context) {
	userID, videoID, ok := pairParams(c)
	if !ok {
		return
	}

	likes, err := h.engagement.Like(c.Request.Context(), userID, videoID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("User %d liked video %d", userID, videoID),
		Likes:   likes,
	})
}

// CreateUser handles POST /users.
func (h *EngagementHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.engagement.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
