// Package xapi is a minimal X API v2 client covering posting, retweeting,
// metrics lookup and OAuth2 token refresh.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"xpilot/internal/ports/social"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.x.com"
	defaultTimeout = 30 * time.Second

	// legacy "invalid or expired token" code
	codeInvalidToken = 89
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type Client struct {
	baseURL    string
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.BaseURL + "/2/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type createPostBody struct {
	Text         string     `json:"text,omitempty"`
	QuoteTweetID string     `json:"quote_tweet_id,omitempty"`
	Reply        *replyBody `json:"reply,omitempty"`
}

type replyBody struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []apiError      `json:"errors"`
	Title  string          `json:"title"`
	Detail string          `json:"detail"`
}

func (c *Client) CreatePost(ctx context.Context, accessToken string, req social.CreatePostRequest) (string, error) {
	body := createPostBody{Text: req.Text, QuoteTweetID: req.QuoteTweetID}
	if req.InReplyToID != "" {
		body.Reply = &replyBody{InReplyToTweetID: req.InReplyToID}
	}

	var out struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", accessToken, body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("x api: create post returned no id")
	}
	return out.ID, nil
}

func (c *Client) Retweet(ctx context.Context, accessToken, xUserID, tweetID string) error {
	var out struct {
		Retweeted bool `json:"retweeted"`
	}
	path := "/2/users/" + url.PathEscape(xUserID) + "/retweets"
	if err := c.do(ctx, http.MethodPost, path, accessToken, map[string]string{"tweet_id": tweetID}, &out); err != nil {
		return err
	}
	if !out.Retweeted {
		return fmt.Errorf("x api: retweet of %s not confirmed", tweetID)
	}
	return nil
}

func (c *Client) GetMetrics(ctx context.Context, accessToken, tweetID string) (*social.Metrics, error) {
	var out struct {
		ID            string `json:"id"`
		PublicMetrics struct {
			Impressions *int64 `json:"impression_count"`
			Likes       int64  `json:"like_count"`
			Retweets    int64  `json:"retweet_count"`
			Replies     int64  `json:"reply_count"`
			Quotes      int64  `json:"quote_count"`
		} `json:"public_metrics"`
	}
	path := "/2/tweets/" + url.PathEscape(tweetID) + "?tweet.fields=public_metrics"
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &social.Metrics{
		TweetID:     out.ID,
		Impressions: out.PublicMetrics.Impressions,
		Likes:       out.PublicMetrics.Likes,
		Retweets:    out.PublicMetrics.Retweets,
		Replies:     out.PublicMetrics.Replies,
		Quotes:      out.PublicMetrics.Quotes,
	}, nil
}

// RefreshToken exchanges refreshToken for a new pair via the refresh-token grant.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*social.Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("x api: refresh token: %w", err)
	}
	return &social.Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("x api: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("x api: failed to read response: %w", err)
	}
	c.logger.Debug("x api call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized || hasCode(env.Errors, codeInvalidToken) {
		return social.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("x api: %s %s failed with status %d: %s", method, path, resp.StatusCode, describe(env, raw))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		if len(env.Errors) > 0 {
			return fmt.Errorf("x api: %s", describe(env, raw))
		}
		return fmt.Errorf("x api: empty response for %s %s", method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("x api: failed to parse response: %w", err)
	}
	return nil
}

func hasCode(errs []apiError, code int) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func describe(env envelope, raw []byte) string {
	switch {
	case env.Detail != "":
		return env.Detail
	case len(env.Errors) > 0 && env.Errors[0].Message != "":
		return env.Errors[0].Message
	case len(env.Errors) > 0:
		return env.Errors[0].Detail
	case env.Title != "":
		return env.Title
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
