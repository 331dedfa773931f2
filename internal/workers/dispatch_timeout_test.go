package workers

import (
	"context"
	"testing"
	"time"

	"xpilot/internal/adapters/database"
	redisadapter "xpilot/internal/adapters/redis"
	postEntity "xpilot/internal/core/post"
	postapp "xpilot/internal/core/post/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// blockingExecutor holds the X call open until the dispatch run times out.
type blockingExecutor struct{ calls int }

func (b *blockingExecutor) Execute(ctx context.Context, _ *postEntity.Post) (string, error) {
	b.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTickTimeoutLeavesNoPostStranded(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := database.NewPostRepositoryDatabase(db)
	queue := redisadapter.NewDueQueueRedis(client, zap.NewNop())
	exec := &blockingExecutor{}
	svc := postapp.NewPostService(repo, queue, exec, nil, nil, zap.NewNop())

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	seed := func(due time.Time) *postEntity.Post {
		p := &postEntity.Post{
			ID:           uuid.Must(uuid.NewV4()),
			UserID:       userID,
			Text:         "Release notes for the June build",
			Status:       postEntity.StatusScheduled,
			ScheduledFor: &due,
		}
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
		require.NoError(t, queue.Add(ctx, p.ID.String(), due))
		return p
	}
	first := seed(time.Now().Add(-2 * time.Minute))
	second := seed(time.Now().Add(-time.Minute))

	w := NewDispatchWorker(queue, svc, 10, 1, zap.NewNop())
	tickCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Tick(tickCtx))
	assert.Equal(t, 1, exec.calls)

	stored, err := repo.FindByID(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, postEntity.StatusFailed, stored.Status)
	require.NotNil(t, stored.LastError)
	assert.Contains(t, *stored.LastError, "deadline")

	stored, err = repo.FindByID(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, postEntity.StatusScheduled, stored.Status)

	ids, err := queue.ClaimDue(ctx, time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID.String()}, ids)
}
