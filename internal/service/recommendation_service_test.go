package service

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/testutil"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecommendationService(db *gorm.DB) *RecommendationService {
	return NewRecommendationService(
		repository.NewCatalogRepository(db),
		repository.NewProgressRepository(db),
		repository.NewCacheRepository(nil),
		NewRulesHolder(nil),
	)
}

func TestNormalizeLimit(t *testing.T) {
	svc := newRecommendationService(nil)
	assert.Equal(t, 5, svc.NormalizeLimit(0))
	assert.Equal(t, 5, svc.NormalizeLimit(-3))
	assert.Equal(t, 7, svc.NormalizeLimit(7))
	assert.Equal(t, 20, svc.NormalizeLimit(100))
}

func TestGetRecommendations_AnonymousIsEmpty(t *testing.T) {
	svc := newRecommendationService(nil)
	recs, err := svc.GetRecommendations(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestGetRecommendations_NewUserGetsFirstTopicPerSubject(t *testing.T) {
	db := testutil.SeededDB(t)
	user := testutil.CreateUser(t, db, "u1")
	svc := newRecommendationService(db)

	recs, err := svc.GetRecommendations(context.Background(), user.ID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 5)

	subjects := map[string]bool{}
	for _, r := range recs {
		assert.True(t, strings.HasPrefix(r.Reason, "Next in "), r.Reason)
		assert.Equal(t, gamification.Beginner, r.Difficulty)
		subjects[r.SubjectSlug] = true
	}
	assert.Len(t, subjects, 5)
}

func TestGetRecommendations_AdvancesAfterCompletion(t *testing.T) {
	db := testutil.SeededDB(t)
	user := testutil.CreateUser(t, db, "u1")
	ctx := context.Background()

	topics, err := repository.NewCatalogRepository(db).ListTopicsOrdered(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(topics), 2)
	first, second := topics[0], topics[1]
	require.Equal(t, first.SubjectID, second.SubjectID)

	var lesson model.Lesson
	require.NoError(t, db.Where("topic_id = ?", first.ID).First(&lesson).Error)
	progress := newProgressService(t, db, testutil.NewClock(noon), nil)
	_, err = progress.CompleteLesson(ctx, user.ID, lesson.ID)
	require.NoError(t, err)

	recs, err := newRecommendationService(db).GetRecommendations(ctx, user.ID, 20)
	require.NoError(t, err)

	ids := map[uint]bool{}
	for _, r := range recs {
		assert.False(t, ids[r.TopicID], "duplicate topic %d", r.TopicID)
		ids[r.TopicID] = true
	}
	assert.False(t, ids[first.ID])
	assert.True(t, ids[second.ID])
	assert.Equal(t, second.ID, recs[0].TopicID)
}

func TestGetDifficultyStats(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10, 10)
	require.NoError(t, db.Create(&model.Topic{SubjectID: cat.Subject.ID, Slug: "python-adv", Title: "Adv", Order: 2, Difficulty: gamification.Advanced}).Error)
	user := testutil.CreateUser(t, db, "u1")
	ctx := context.Background()

	progress := newProgressService(t, db, testutil.NewClock(noon), nil)
	for _, l := range cat.Lessons {
		_, err := progress.CompleteLesson(ctx, user.ID, l.ID)
		require.NoError(t, err)
	}

	stats, err := newRecommendationService(db).GetDifficultyStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, DifficultyStat{Completed: 2, Total: 1}, stats[gamification.Beginner])
	assert.Equal(t, DifficultyStat{Completed: 0, Total: 0}, stats[gamification.Intermediate])
	assert.Equal(t, DifficultyStat{Completed: 0, Total: 1}, stats[gamification.Advanced])
}
