package scoring

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/riskscore/internal/logging"
	"github.com/mbd888/riskscore/internal/validation"
)

// Handler provides the HTTP endpoint for transaction scoring
type Handler struct {
	service *Service
}

// NewHandler creates a new scoring handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up scoring routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/score", h.ScoreTransaction)
}

// ScoreTransaction handles POST /score
func (h *Handler) ScoreTransaction(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	ctx := c.Request.Context()
	correlationID := logging.CorrelationID(ctx)

	result, err := h.service.Score(ctx, &req, correlationID)
	if err != nil {
		var verrs validation.ValidationErrors
		switch {
		case errors.Is(err, ErrPredictorUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "model_not_loaded",
				"message": "Scoring model is not loaded",
			})
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": verrs.Error(),
				"fields":  verrs,
			})
		default:
			// Internal failures stay opaque to the caller
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "An unexpected error occurred",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
