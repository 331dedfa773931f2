package httpapi

import (
	"net/http"
	"time"

	postEntity "xpilot/internal/core/post"
	postPort "xpilot/internal/ports/post"

	"github.com/gin-gonic/gin"
)

type PostController struct{ pc PostUseCase }

func NewPostController(pc PostUseCase) *PostController { return &PostController{pc: pc} }

func (ctl *PostController) Create(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req struct {
		Text             string    `json:"text"`
		ScheduledFor     time.Time `json:"scheduled_for" binding:"required"`
		AccountID        string    `json:"account_id"`
		OriginalTweetID  string    `json:"original_tweet_id"`
		RetweetType      string    `json:"retweet_type"`
		Trend            string    `json:"trend"`
		Purpose          string    `json:"purpose"`
		ABTestID         string    `json:"ab_test_id"`
		NaturalnessScore *int      `json:"naturalness_score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctl.pc.CreateScheduled(c.Request.Context(), postPort.CreateInput{
		UserID:           userID,
		TwitterAccountID: req.AccountID,
		Text:             req.Text,
		ScheduledFor:     req.ScheduledFor,
		OriginalTweetID:  req.OriginalTweetID,
		RetweetType:      postEntity.RetweetType(req.RetweetType),
		Trend:            req.Trend,
		Purpose:          req.Purpose,
		ABTestID:         req.ABTestID,
		NaturalnessScore: req.NaturalnessScore,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (ctl *PostController) List(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	posts, err := ctl.pc.List(c.Request.Context(), userID, postEntity.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (ctl *PostController) Get(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	p, err := ctl.pc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) Reschedule(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req struct {
		ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctl.pc.Reschedule(c.Request.Context(), userID, c.Param("id"), req.ScheduledFor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) UpdateText(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctl.pc.UpdateText(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) PostNow(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	p, err := ctl.pc.PostNow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) Delete(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := ctl.pc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
