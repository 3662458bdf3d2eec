package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/ecoquest-engine/internal/adapters/handler/http/middleware"
	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

type DailyHandler struct {
	svc *services.CompletionService
}

func NewDailyHandler(svc *services.CompletionService) *DailyHandler {
	return &DailyHandler{
		svc: svc,
	}
}

type statusResponse struct {
	Feature   domain.Feature `json:"feature"`
	ItemID    string         `json:"itemId"`
	Completed bool           `json:"completed"`
}

// RegisterRoutes mounts the daily endpoints. claimGuards run before Complete
// only, since that is the one route that reaches the reward API.
func (h *DailyHandler) RegisterRoutes(router *gin.RouterGroup, claimGuards ...gin.HandlerFunc) {
	daily := router.Group("/daily/:feature")
	{
		daily.GET("", h.Summary)
		daily.DELETE("", h.Clear)
		daily.GET("/items/:itemID", h.Status)
		daily.POST("/items/:itemID/complete", append(claimGuards, h.Complete)...)
	}
}

// Summary godoc
// @Summary  Today's completions for a feature
// @Tags     daily
// @Produce  json
// @Param    feature path string true "tips or quizzes"
// @Success  200 {object} domain.DailySummary
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /daily/{feature} [get]
func (h *DailyHandler) Summary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return
	}

	feature, err := domain.ParseFeature(c.Param("feature"))
	if err != nil {
		handleError(c, err)
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), feature, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Status godoc
// @Summary  Whether an item was already credited today
// @Tags     daily
// @Produce  json
// @Param    feature path string true "tips or quizzes"
// @Param    itemID  path string true "item id"
// @Success  200 {object} statusResponse
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /daily/{feature}/items/{itemID} [get]
func (h *DailyHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return
	}

	feature, err := domain.ParseFeature(c.Param("feature"))
	if err != nil {
		handleError(c, err)
		return
	}

	itemID := c.Param("itemID")
	completed, err := h.svc.Status(c.Request.Context(), feature, itemID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Feature:   feature,
		ItemID:    itemID,
		Completed: completed,
	})
}

// Complete godoc
// @Summary  Claim the reward for an item, at most once per day
// @Tags     daily
// @Produce  json
// @Param    feature path string true "tips or quizzes"
// @Param    itemID  path string true "item id"
// @Success  200 {object} domain.Reward
// @Failure  400 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Failure  429 {object} errorResponse
// @Failure  502 {object} errorResponse
// @Security BearerAuth
// @Router   /daily/{feature}/items/{itemID}/complete [post]
func (h *DailyHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return
	}

	feature, err := domain.ParseFeature(c.Param("feature"))
	if err != nil {
		handleError(c, err)
		return
	}

	reward, err := h.svc.Complete(c.Request.Context(), services.CompleteInput{
		Feature: feature,
		ItemID:  c.Param("itemID"),
		UserID:  userID,
		Token:   middleware.GetToken(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, reward)
}

// Clear godoc
// @Summary  Forget today's completions for a feature
// @Tags     daily
// @Param    feature path string true "tips or quizzes"
// @Success  204
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /daily/{feature} [delete]
func (h *DailyHandler) Clear(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return
	}

	feature, err := domain.ParseFeature(c.Param("feature"))
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.svc.Clear(c.Request.Context(), feature, userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
