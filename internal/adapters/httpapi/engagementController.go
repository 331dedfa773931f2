package httpapi

import (
	"context"
	"net/http"
	"time"

	"xpilot/internal/core/apperr"
	engagementapp "xpilot/internal/core/engagement/service"
	postEntity "xpilot/internal/core/post"

	"github.com/gin-gonic/gin"
)

type EngagementController struct{ ec EngagementUseCase }

func NewEngagementController(ec EngagementUseCase) *EngagementController {
	return &EngagementController{ec: ec}
}

type engagementRequest struct {
	TargetTweetID    string     `json:"target_tweet_id" binding:"required"`
	AccountID        string     `json:"account_id"`
	Comment          string     `json:"comment"`
	Trend            string     `json:"trend"`
	Purpose          string     `json:"purpose"`
	ABTestID         string     `json:"ab_test_id"`
	NaturalnessScore *int       `json:"naturalness_score"`
	Action           string     `json:"action"`
	ScheduledFor     *time.Time `json:"scheduled_for"`
}

func (r engagementRequest) input(userID string) engagementapp.Input {
	in := engagementapp.Input{
		UserID:           userID,
		AccountID:        r.AccountID,
		TargetTweetID:    r.TargetTweetID,
		Comment:          r.Comment,
		Trend:            r.Trend,
		Purpose:          r.Purpose,
		ABTestID:         r.ABTestID,
		NaturalnessScore: r.NaturalnessScore,
	}
	if r.ScheduledFor != nil {
		in.ScheduledFor = *r.ScheduledFor
	}
	return in
}

func (ctl *EngagementController) Retweet(c *gin.Context) { ctl.now(c, ctl.ec.PostSimpleRetweet) }

func (ctl *EngagementController) Quote(c *gin.Context) { ctl.now(c, ctl.ec.PostQuoteRT) }

func (ctl *EngagementController) Reply(c *gin.Context) { ctl.now(c, ctl.ec.PostReply) }

func (ctl *EngagementController) now(c *gin.Context, fn func(context.Context, engagementapp.Input) (*postEntity.Post, error)) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req engagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := fn(c.Request.Context(), req.input(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Schedule زمان‌بندی ریتوییت ساده، کوت یا ریپلای بر اساس action
func (ctl *EngagementController) Schedule(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	var req engagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := req.input(userID)

	var (
		p   *postEntity.Post
		err error
	)
	switch req.Action {
	case "retweet":
		in.RetweetType = postEntity.RetweetSimple
		p, err = ctl.ec.ScheduleRetweet(c.Request.Context(), in)
	case "quote":
		in.RetweetType = postEntity.RetweetQuote
		p, err = ctl.ec.ScheduleRetweet(c.Request.Context(), in)
	case "reply":
		p, err = ctl.ec.ScheduleReply(c.Request.Context(), in)
	default:
		err = apperr.New(apperr.KindInvalid, "action must be retweet, quote or reply")
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
