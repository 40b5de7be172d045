package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultTailLimit is the number of entries returned when no limit is given.
const DefaultTailLimit = 100

// MaxTailLimit caps a single retrieval.
const MaxTailLimit = 1000

// Handler provides HTTP endpoints for audit log retrieval
type Handler struct {
	trail *Trail
}

// NewHandler creates a new audit handler
func NewHandler(trail *Trail) *Handler {
	return &Handler{trail: trail}
}

// RegisterRoutes sets up audit routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

// List handles GET /audit-logs?limit=N (bounded tail, most recent first)
func (h *Handler) List(c *gin.Context) {
	limit := DefaultTailLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be a positive integer",
			})
			return
		}
		if parsed > MaxTailLimit {
			parsed = MaxTailLimit
		}
		limit = parsed
	}

	logs := h.trail.Tail(limit)
	c.JSON(http.StatusOK, gin.H{
		"total": h.trail.Size(),
		"logs":  logs,
	})
}
