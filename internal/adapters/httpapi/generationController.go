package httpapi

import (
	"context"
	"net/http"

	generationapp "xpilot/internal/core/generation/service"

	"github.com/gin-gonic/gin"
)

type GenerationController struct{ gc GenerationUseCase }

func NewGenerationController(gc GenerationUseCase) *GenerationController {
	return &GenerationController{gc: gc}
}

func (ctl *GenerationController) Quote(c *gin.Context) { ctl.generate(c, ctl.gc.GenerateQuote) }

func (ctl *GenerationController) Reply(c *gin.Context) { ctl.generate(c, ctl.gc.GenerateReply) }

func (ctl *GenerationController) generate(c *gin.Context, fn func(ctx context.Context, userID, targetText string) (*generationapp.Draft, error)) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req struct {
		TargetText string `json:"target_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := fn(c.Request.Context(), userID, req.TargetText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
