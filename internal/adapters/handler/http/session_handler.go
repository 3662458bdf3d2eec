package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/ecoquest-engine/internal/adapters/handler/http/middleware"
	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

type SessionHandler struct {
	svc *services.CompletionService
}

func NewSessionHandler(svc *services.CompletionService) *SessionHandler {
	return &SessionHandler{
		svc: svc,
	}
}

type sessionResponse struct {
	UserID   string                 `json:"userId"`
	Guest    bool                   `json:"guest"`
	Features []*domain.DailySummary `json:"features"`
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/session", h.Start)
}

// Start godoc
// @Summary  Start or switch the active session
// @Description Loads today's completions of every feature for the caller. Without a token the session is a guest session.
// @Tags     session
// @Produce  json
// @Success  200 {object} sessionResponse
// @Failure  401 {object} errorResponse
// @Security BearerAuth
// @Router   /session [post]
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return
	}

	ctx := c.Request.Context()
	h.svc.StartSession(ctx, userID)

	resp := sessionResponse{
		UserID: userID,
		Guest:  userID == domain.GuestUserID,
	}
	for _, feature := range domain.AllFeatures() {
		summary, err := h.svc.Summary(ctx, feature, userID)
		if err != nil {
			handleError(c, err)
			return
		}
		resp.Features = append(resp.Features, summary)
	}

	c.JSON(http.StatusOK, resp)
}
