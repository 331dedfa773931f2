package httpapi

import (
	"net/http"
	"strconv"

	"xpilot/internal/core/apperr"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct{ ac AnalyticsUseCase }

func NewAnalyticsController(ac AnalyticsUseCase) *AnalyticsController {
	return &AnalyticsController{ac: ac}
}

func (ctl *AnalyticsController) ABTests(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	groups, err := ctl.ac.ABTests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": groups})
}

func (ctl *AnalyticsController) TopPosts(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Wrap(apperr.KindInvalid, "limit must be a number", err))
			return
		}
		limit = n
	}
	posts, err := ctl.ac.TopPosts(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (ctl *AnalyticsController) SyncMetrics(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	p, err := ctl.ac.SyncMetrics(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
