package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"xpilot/internal/ports/social"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, ClientID: "cid", ClientSecret: "secret"}, zap.NewNop())
}

func TestCreatePostQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nice", body["text"])
		assert.Equal(t, "111", body["quote_tweet_id"])
		assert.NotContains(t, body, "reply")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"222","text":"nice"}}`))
	})

	id, err := c.CreatePost(context.Background(), "tok", social.CreatePostRequest{Text: "nice", QuoteTweetID: "111"})
	require.NoError(t, err)
	assert.Equal(t, "222", id)
}

func TestCreatePostReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reply struct {
				InReplyToTweetID string `json:"in_reply_to_tweet_id"`
			} `json:"reply"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "111", body.Reply.InReplyToTweetID)
		_, _ = w.Write([]byte(`{"data":{"id":"333"}}`))
	})

	id, err := c.CreatePost(context.Background(), "tok", social.CreatePostRequest{Text: "agreed", InReplyToID: "111"})
	require.NoError(t, err)
	assert.Equal(t, "333", id)
}

func TestUnauthorizedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized","detail":"Unauthorized","status":401}`))
	})

	_, err := c.CreatePost(context.Background(), "expired", social.CreatePostRequest{Text: "x"})
	assert.True(t, errors.Is(err, social.ErrUnauthorized))
}

func TestLegacyInvalidTokenCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`))
	})

	err := c.Retweet(context.Background(), "expired", "42", "111")
	assert.True(t, errors.Is(err, social.ErrUnauthorized))
}

func TestServerErrorIsNotUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"title":"Service Unavailable"}`))
	})

	_, err := c.CreatePost(context.Background(), "tok", social.CreatePostRequest{Text: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, social.ErrUnauthorized))
	assert.Contains(t, err.Error(), "503")
}

func TestRetweet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/42/retweets", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "111", body["tweet_id"])
		_, _ = w.Write([]byte(`{"data":{"retweeted":true}}`))
	})

	require.NoError(t, c.Retweet(context.Background(), "tok", "42", "111"))
}

func TestGetMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/2/tweets/555", r.URL.Path)
		assert.Equal(t, "public_metrics", r.URL.Query().Get("tweet.fields"))
		_, _ = w.Write([]byte(`{"data":{"id":"555","public_metrics":{"retweet_count":2,"reply_count":3,"like_count":40,"quote_count":1,"impression_count":1200}}}`))
	})

	m, err := c.GetMetrics(context.Background(), "tok", "555")
	require.NoError(t, err)
	require.NotNil(t, m.Impressions)
	assert.EqualValues(t, 1200, *m.Impressions)
	assert.EqualValues(t, 40, m.Likes)
	assert.EqualValues(t, 2, m.Retweets)
	assert.EqualValues(t, 3, m.Replies)
	assert.EqualValues(t, 1, m.Quotes)
}

func TestRefreshToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/oauth2/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "cid", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"bearer","expires_in":7200}`))
	})

	tok, err := c.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)
	assert.Equal(t, "new-refresh", tok.RefreshToken)
	assert.False(t, tok.ExpiresAt.IsZero())
}

func TestRefreshTokenRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"Value passed for the token was invalid."}`))
	})

	_, err := c.RefreshToken(context.Background(), "old-refresh")
	assert.Error(t, err)
}
