package httpapi

import (
	"net/http"
	"strings"

	"xpilot/internal/core/apperr"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindQuotaExceeded:     http.StatusTooManyRequests,
	apperr.KindRateLimitExceeded: http.StatusTooManyRequests,
	apperr.KindAuthExpired:       http.StatusUnauthorized,
	apperr.KindUnauthenticated:   http.StatusUnauthorized,
	apperr.KindExternalService:   http.StatusBadGateway,
	apperr.KindPersistence:       http.StatusInternalServerError,
	apperr.KindInternal:          http.StatusInternalServerError,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindInvalid:           http.StatusBadRequest,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindForbidden:         http.StatusForbidden,
}

// پیام‌های کاربرپسند برای هر نوع خطا
var messages = map[string]map[apperr.Kind]string{
	"en": {
		apperr.KindQuotaExceeded:     "You have reached today's generation limit. Upgrade to Pro for unlimited drafts.",
		apperr.KindRateLimitExceeded: "Too many retweets, quotes and replies in the last 24 hours. Please try again later.",
		apperr.KindAuthExpired:       "Your X connection has expired. Please reconnect your account.",
		apperr.KindUnauthenticated:   "Invalid credentials.",
		apperr.KindExternalService:   "An external service is unavailable. Please try again later.",
		apperr.KindPersistence:       "Could not save your changes. Please try again.",
		apperr.KindInternal:          "Something went wrong.",
		apperr.KindNotFound:          "Not found.",
		apperr.KindConflict:          "The request conflicts with the current state.",
		apperr.KindForbidden:         "You do not have access to this resource.",
	},
	"ja": {
		apperr.KindQuotaExceeded:     "本日の生成上限に達しました。Proプランにアップグレードすると無制限に利用できます。",
		apperr.KindRateLimitExceeded: "過去24時間のリツイート・引用・リプライが多すぎます。しばらくしてから再度お試しください。",
		apperr.KindAuthExpired:       "Xとの連携が切れました。アカウントを再連携してください。",
		apperr.KindUnauthenticated:   "認証情報が正しくありません。",
		apperr.KindExternalService:   "外部サービスが利用できません。しばらくしてから再度お試しください。",
		apperr.KindPersistence:       "保存できませんでした。もう一度お試しください。",
		apperr.KindInternal:          "エラーが発生しました。",
		apperr.KindNotFound:          "見つかりません。",
		apperr.KindConflict:          "現在の状態と競合しています。",
		apperr.KindForbidden:         "このリソースへのアクセス権がありません。",
	},
}

func language(c *gin.Context) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.GetHeader("Accept-Language"))), "ja") {
		return "ja"
	}
	return "en"
}

// respondError writes the error result for err. Invalid input keeps the
// service message since it names the offending field.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := messages[language(c)][kind]
	if kind == apperr.KindInvalid {
		if m := apperr.Message(err); m != "" {
			msg = m
		}
	}
	if msg == "" {
		msg = messages["en"][apperr.KindInternal]
	}
	c.JSON(status, gin.H{"success": false, "kind": string(kind), "error": msg})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apperr.Wrap(apperr.KindInvalid, "invalid input", err))
}

// userIDFrom گرفتن userID از context
func userIDFrom(c *gin.Context) (string, bool) {
	id := c.GetString("userID")
	if id == "" {
		respondError(c, apperr.New(apperr.KindUnauthenticated, "user not found in context"))
		return "", false
	}
	return id, true
}
