package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownFeature):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown feature"})
	case errors.Is(err, domain.ErrInvalidItemID):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
	case errors.Is(err, domain.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, errorResponse{Error: "item already completed today"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "reward server rejected the credentials"})
	case errors.Is(err, domain.ErrRewardFailed):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "reward server unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
