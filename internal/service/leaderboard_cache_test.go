package service

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/testutil"
	"codepath_backend/internal/util"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaderboardKey = "codepath:leaderboard:xp"

func TestLeaderboard_RedisIncludesUsersWithoutRecentActivity(t *testing.T) {
	db := testutil.DB(t)
	_, rdb := testutil.Redis(t)
	cache := repository.NewCacheRepository(rdb)
	cat := testutil.CreateCatalog(t, db, "python", 40)
	leader := testutil.CreateUser(t, db, "leader", withXP(5000))
	user := testutil.CreateUser(t, db, "u1")
	ctx := context.Background()

	progress := newProgressService(t, db, testutil.NewClock(noon), nil)
	progress.Cache = cache
	_, err := progress.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)

	svc := newAchievementService(db)
	svc.Cache = cache

	mine, err := svc.GetUserAchievements(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Rank)

	board, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, leader.ID, board[0].UserID)
	assert.Equal(t, 5000, board[0].XP)
	assert.Equal(t, user.ID, board[1].UserID)
	assert.Equal(t, 40, board[1].XP)
	assert.Equal(t, 2, board[1].Rank)
}

func TestLeaderboard_RedisServesGrowingLimit(t *testing.T) {
	db := testutil.DB(t)
	mr, rdb := testutil.Redis(t)
	for i := 1; i <= 25; i++ {
		testutil.CreateUser(t, db, fmt.Sprintf("user-%02d", i), withXP(i*100))
	}
	svc := newAchievementService(db)
	svc.Cache = repository.NewCacheRepository(rdb)
	ctx := context.Background()

	top5, err := svc.GetLeaderboard(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top5, 5)
	assert.Equal(t, 2500, top5[0].XP)

	members, err := mr.ZMembers(leaderboardKey)
	require.NoError(t, err)
	assert.Len(t, members, 25)

	top20, err := svc.GetLeaderboard(ctx, 20)
	require.NoError(t, err)
	require.Len(t, top20, 20)
	for i, e := range top20 {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, (25-i)*100, e.XP)
	}
}

func TestLeaderboard_RedisTiesMatchDatabase(t *testing.T) {
	db := testutil.DB(t)
	_, rdb := testutil.Redis(t)
	a := testutil.CreateUser(t, db, "a", withXP(100))
	b := testutil.CreateUser(t, db, "b", withXP(100))
	c := testutil.CreateUser(t, db, "c", withXP(300))
	ctx := context.Background()

	dbOnly := newAchievementService(db)
	expected, err := dbOnly.GetLeaderboard(ctx, 10)
	require.NoError(t, err)

	svc := newAchievementService(db)
	svc.Cache = repository.NewCacheRepository(rdb)
	board, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, expected, board)
	require.Len(t, board, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{board[0].UserID, board[1].UserID, board[2].UserID})

	// 同分共享名次
	for _, u := range []*model.User{a, b} {
		got, err := svc.GetUserAchievements(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Rank)
	}
}

func TestLeaderboard_NewAndActiveUsersStayInSync(t *testing.T) {
	db := testutil.DB(t)
	mr, rdb := testutil.Redis(t)
	cache := repository.NewCacheRepository(rdb)
	cat := testutil.CreateCatalog(t, db, "python", 40)
	testutil.CreateUser(t, db, "leader", withXP(5000))
	ctx := context.Background()

	svc := newAchievementService(db)
	svc.Cache = cache
	_, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)

	userSync := NewUserSyncService(repository.NewUserRepository(db), cache, config.WebhookConfig{})
	fresh, err := userSync.EnsureUser(ctx, &util.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "fresh"}})
	require.NoError(t, err)
	score, err := mr.ZScore(leaderboardKey, strconv.FormatUint(uint64(fresh.ID), 10))
	require.NoError(t, err)
	assert.Zero(t, score)

	progress := newProgressService(t, db, testutil.NewClock(noon), nil)
	progress.Cache = cache
	_, err = progress.CompleteLesson(ctx, fresh.ID, cat.Lessons[0].ID)
	require.NoError(t, err)

	// 再次登录不会覆盖已有分数
	_, err = userSync.EnsureUser(ctx, &util.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "fresh"}})
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, fresh.ID, board[1].UserID)
	assert.Equal(t, 40, board[1].XP)
	score, err = mr.ZScore(leaderboardKey, strconv.FormatUint(uint64(fresh.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, float64(40), score)
}

func TestGetRecommendations_CachedAndInvalidatedOnCompletion(t *testing.T) {
	db := testutil.SeededDB(t)
	mr, rdb := testutil.Redis(t)
	cache := repository.NewCacheRepository(rdb)
	user := testutil.CreateUser(t, db, "u1")
	other := testutil.CreateUser(t, db, "u2")
	ctx := context.Background()

	recs := newRecommendationService(db)
	recs.Cache = cache

	first, err := recs.GetRecommendations(ctx, user.ID, 5)
	require.NoError(t, err)
	require.Len(t, first, 5)

	key5 := fmt.Sprintf("codepath:recommendations:%d:5", user.ID)
	require.True(t, mr.Exists(key5))
	assert.Equal(t, 10*time.Minute, mr.TTL(key5))

	// 命中时直接返回缓存内容
	require.NoError(t, mr.Set(key5, `[{"topicId":1,"topicTitle":"Cached","reason":"cached"}]`))
	cached, err := recs.GetRecommendations(ctx, user.ID, 5)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Cached", cached[0].TopicTitle)

	_, err = recs.GetRecommendations(ctx, user.ID, 20)
	require.NoError(t, err)
	_, err = recs.GetRecommendations(ctx, other.ID, 5)
	require.NoError(t, err)
	key20 := fmt.Sprintf("codepath:recommendations:%d:20", user.ID)
	otherKey := fmt.Sprintf("codepath:recommendations:%d:5", other.ID)
	require.True(t, mr.Exists(key20))

	var lesson model.Lesson
	require.NoError(t, db.Order("id").First(&lesson).Error)
	progress := newProgressService(t, db, testutil.NewClock(noon), nil)
	progress.Cache = cache
	_, err = progress.CompleteLesson(ctx, user.ID, lesson.ID)
	require.NoError(t, err)

	assert.False(t, mr.Exists(key5))
	assert.False(t, mr.Exists(key20))
	assert.True(t, mr.Exists(otherKey))

	fresh, err := recs.GetRecommendations(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.NotEqual(t, "Cached", fresh[0].TopicTitle)
}
