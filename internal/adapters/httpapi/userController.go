package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	uc         UserUseCase
	quota      QuotaUseCase
	dailyLimit int
}

func NewUserController(uc UserUseCase, quota QuotaUseCase, dailyLimit int) *UserController {
	return &UserController{uc: uc, quota: quota, dailyLimit: dailyLimit}
}

func (ctl *UserController) LoginUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := ctl.uc.LoginUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *UserController) RegisterUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := ctl.uc.RegisterUser(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Quota سهمیه امروز کاربر
func (ctl *UserController) Quota(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	u, err := ctl.uc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctl.quota.CanProceed(c.Request.Context(), userID, u.IsPro(), ctl.dailyLimit))
}
