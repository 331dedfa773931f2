package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"xpilot/internal/core/account"
	"xpilot/internal/core/apperr"
	"xpilot/internal/core/post"
	"xpilot/internal/core/promotion"
	"xpilot/internal/core/usage"
	"xpilot/internal/core/user"
	"xpilot/internal/ports/social"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func strPtr(s string) *string { return &s }

func newPost(userID uuid.UUID, status post.Status) *post.Post {
	at := time.Now().Add(time.Hour).UTC()
	return &post.Post{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		Text:         "hello from the scheduler",
		Status:       status,
		ScheduledFor: &at,
	}
}

func TestPostRepositoryCreateAndFind(t *testing.T) {
	repo := NewPostRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	p := newPost(uid, post.StatusScheduled)
	p.TwitterAccountID = uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true}
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.Text, got.Text)
	assert.Equal(t, post.StatusScheduled, got.Status)
	assert.Equal(t, p.TwitterAccountID, got.TwitterAccountID)

	_, err = repo.FindByID(ctx, uuid.Must(uuid.NewV4()).String())
	assert.True(t, errors.Is(err, apperr.NotFound))
}

func TestPostRepositoryUpdateIf(t *testing.T) {
	repo := NewPostRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	p := newPost(uuid.Must(uuid.NewV4()), post.StatusScheduled)
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	p.Status = post.StatusPosted
	p.TweetID = strPtr("123")
	ok, err := repo.UpdateIf(ctx, p, post.StatusScheduled)
	require.NoError(t, err)
	assert.True(t, ok)

	// the stored row is no longer scheduled
	p.Status = post.StatusFailed
	ok, err = repo.UpdateIf(ctx, p, post.StatusScheduled)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := repo.FindByID(ctx, p.ID.String())
	assert.Equal(t, post.StatusPosted, got.Status)
	assert.Equal(t, "123", *got.TweetID)
}

func TestPostRepositoryCountEngagementsSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepositoryDatabase(db)
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	for i := 0; i < 3; i++ {
		p := newPost(uid, post.StatusPosted)
		p.OriginalTweetID = strPtr("999")
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}
	old := newPost(uid, post.StatusPosted)
	old.OriginalTweetID = strPtr("999")
	_, err := repo.Create(ctx, old)
	require.NoError(t, err)
	require.NoError(t, db.Model(&post.Post{}).Where("id = ?", old.ID).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	_, err = repo.Create(ctx, newPost(uid, post.StatusScheduled))
	require.NoError(t, err)

	n, err := repo.CountEngagementsSince(ctx, uid.String(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestPostRepositoryFindByUserIDAndDue(t *testing.T) {
	repo := NewPostRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	due := newPost(uid, post.StatusScheduled)
	past := time.Now().Add(-time.Minute).UTC()
	due.ScheduledFor = &past
	_, err := repo.Create(ctx, due)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newPost(uid, post.StatusScheduled))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newPost(uid, post.StatusDeleted))
	require.NoError(t, err)

	all, err := repo.FindByUserID(ctx, uid.String(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deleted, err := repo.FindByUserID(ctx, uid.String(), post.StatusDeleted)
	require.NoError(t, err)
	assert.Len(t, deleted, 1)

	dueRows, err := repo.FindDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, dueRows, 1)
	assert.Equal(t, due.ID, dueRows[0].ID)

	ids, err := NewDueQueueDatabase(repo.db).ClaimDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{due.ID.String()}, ids)
}

func TestPostRepositoryTopAndABTest(t *testing.T) {
	repo := NewPostRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	low := newPost(uid, post.StatusPosted)
	low.LikeCount = 1
	low.ABTestID = strPtr("t1")
	high := newPost(uid, post.StatusPosted)
	high.LikeCount = 40
	high.ABTestID = strPtr("t1")
	for _, p := range []*post.Post{low, high, newPost(uid, post.StatusScheduled)} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	top, err := repo.FindTopPosted(ctx, uid.String(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high.ID, top[0].ID)

	ab, err := repo.FindWithABTest(ctx, uid.String())
	require.NoError(t, err)
	assert.Len(t, ab, 2)
}

func TestUsageRepositoryIncrement(t *testing.T) {
	repo := NewUsageRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4()).String()
	day := usage.Day(time.Now())

	n, err := repo.Get(ctx, uid, day)
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := 1; want <= 3; want++ {
		got, err := repo.Increment(ctx, uid, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := repo.Get(ctx, uid, "1999-01-01")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestPromotionRepositoryUpsert(t *testing.T) {
	repo := NewPromotionRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	s, err := repo.Find(ctx, uid.String())
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, repo.Upsert(ctx, &promotion.Settings{UserID: uid, Enabled: true, LinkURL: "https://a.test", Template: "[link]"}))
	require.NoError(t, repo.Upsert(ctx, &promotion.Settings{UserID: uid, Enabled: false, LinkURL: "https://b.test", Template: "[link]"}))

	s, err = repo.Find(ctx, uid.String())
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.Equal(t, "https://b.test", s.LinkURL)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepositoryDatabase(newTestDB(t))
	ctx := context.Background()

	u := &user.User{ID: uuid.Must(uuid.NewV4()), Name: "Sara", Username: "sara", Password: "hash", Plan: user.PlanFree}
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePlan(ctx, u.ID.String(), user.PlanPro))
	got, err := repo.FindByUsername(ctx, "sara")
	require.NoError(t, err)
	assert.Equal(t, user.PlanPro, got.Plan)

	_, err = repo.FindByID(ctx, uuid.Must(uuid.NewV4()).String())
	assert.True(t, errors.Is(err, apperr.NotFound))
}

func TestAccountRepositorySwapTokens(t *testing.T) {
	repo := NewAccountRepositoryDatabase(newTestDB(t))
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	a := &account.TwitterAccount{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       uid,
		XUserID:      "42",
		Username:     "builder",
		AccessToken:  "a1",
		RefreshToken: "r1",
		IsDefault:    true,
	}
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)

	ok, err := repo.SwapTokens(ctx, a.ID.String(), "r1", social.Tokens{AccessToken: "a2", RefreshToken: "r2"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SwapTokens(ctx, a.ID.String(), "r1", social.Tokens{AccessToken: "a3", RefreshToken: "r3"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindDefaultByUserID(ctx, uid.String())
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)

	require.NoError(t, repo.ClearDefault(ctx, uid.String()))
	_, err = repo.FindDefaultByUserID(ctx, uid.String())
	assert.True(t, errors.Is(err, apperr.NotFound))
}

func TestDueQueueDatabaseClaimsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepositoryDatabase(db)
	q := NewDueQueueDatabase(db)
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	var want []string
	for _, ago := range []time.Duration{3 * time.Minute, 2 * time.Minute, time.Minute} {
		p := newPost(uid, post.StatusScheduled)
		at := time.Now().Add(-ago).UTC()
		p.ScheduledFor = &at
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
		want = append(want, p.ID.String())
	}
	failed := newPost(uid, post.StatusFailed)
	past := time.Now().Add(-time.Hour).UTC()
	failed.ScheduledFor = &past
	_, err := repo.Create(ctx, failed)
	require.NoError(t, err)

	ids, err := q.ClaimDue(ctx, time.Now().UTC(), 2)
	require.NoError(t, err)
	assert.Equal(t, want[:2], ids)

	ids, err = q.ClaimDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}
