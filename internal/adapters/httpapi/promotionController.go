package httpapi

import (
	"net/http"

	promotionPort "xpilot/internal/ports/promotion"

	"github.com/gin-gonic/gin"
)

type PromotionController struct{ pc PromotionUseCase }

func NewPromotionController(pc PromotionUseCase) *PromotionController {
	return &PromotionController{pc: pc}
}

func (ctl *PromotionController) Get(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	s, err := ctl.pc.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (ctl *PromotionController) Update(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req promotionPort.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := ctl.pc.Update(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
