package httpapi

import (
	"net/http"

	accountPort "xpilot/internal/ports/account"

	"github.com/gin-gonic/gin"
)

type AccountController struct{ ac AccountUseCase }

func NewAccountController(ac AccountUseCase) *AccountController { return &AccountController{ac: ac} }

func (ctl *AccountController) Connect(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req struct {
		XUserID      string `json:"x_user_id" binding:"required"`
		Username     string `json:"username" binding:"required"`
		AccessToken  string `json:"access_token" binding:"required"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		MakeDefault  bool   `json:"make_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acc, err := ctl.ac.ConnectAccount(c.Request.Context(), accountPort.ConnectInput{
		UserID:       userID,
		XUserID:      req.XUserID,
		Username:     req.Username,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresIn:    req.ExpiresIn,
		MakeDefault:  req.MakeDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

func (ctl *AccountController) List(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	accounts, err := ctl.ac.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}
