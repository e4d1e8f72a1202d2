package service

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/testutil"
	"codepath_backend/internal/util"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var noon = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newProgressService(t *testing.T, db *gorm.DB, clock *testutil.Clock, rules *Rules) *ProgressService {
	t.Helper()
	s := NewProgressService(
		db,
		repository.NewUserRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewProgressRepository(db),
		repository.NewStreakRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewGoalRepository(db),
		repository.NewCacheRepository(nil),
		NewRulesHolder(rules),
	)
	s.Now = clock.Now
	return s
}

func reload(t *testing.T, db *gorm.DB, id uint) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

func TestCompleteLesson_AwardsXPOnce(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 0)
	user := testutil.CreateUser(t, db, "u1")
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	ctx := context.Background()

	first, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 10, first.XPEarned)
	assert.Equal(t, 10, first.TotalXP)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, 1, first.Streak)

	second, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, 0, second.XPEarned)
	assert.Equal(t, 10, second.TotalXP)
	assert.Empty(t, second.BadgesUnlocked)

	stored := reload(t, db, user.ID)
	assert.Equal(t, 10, stored.XP)

	var count int64
	db.Model(&model.UserProgress{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCompleteLesson_LevelBoundary(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10, 10)
	user := testutil.CreateUser(t, db, "u1", func(u *model.User) { u.XP = 85 })
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	ctx := context.Background()

	r1, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 95, r1.TotalXP)
	assert.Equal(t, 1, r1.Level)
	assert.False(t, r1.LeveledUp)

	r2, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 105, r2.TotalXP)
	assert.Equal(t, 2, r2.Level)
	assert.True(t, r2.LeveledUp)
	assert.Equal(t, gamification.LevelInfo{Level: 2, CurrentXPInLevel: 5, XPNeededForNextLevel: 150, TotalXP: 105}, r2.LevelInfo)

	stored := reload(t, db, user.ID)
	assert.Equal(t, 105, stored.XP)
	assert.Equal(t, 2, stored.Level)
}

func TestCompleteLesson_StreakTransitions(t *testing.T) {
	tests := []struct {
		name        string
		lastActive  *time.Time
		streak      int
		longest     int
		wantStreak  int
		wantLongest int
	}{
		{"first activity", nil, 0, 0, 1, 1},
		{"same day", ptrTime(noon.Add(-2 * time.Hour)), 3, 4, 3, 4},
		{"next day", ptrTime(noon.Add(-25 * time.Hour)), 3, 3, 4, 4},
		{"gap resets but keeps longest", ptrTime(noon.Add(-72 * time.Hour)), 5, 9, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.DB(t)
			cat := testutil.CreateCatalog(t, db, "python", 10)
			user := testutil.CreateUser(t, db, "u1", func(u *model.User) {
				u.LastActiveAt = tt.lastActive
				u.CurrentStreak = tt.streak
				u.LongestStreak = tt.longest
			})
			svc := newProgressService(t, db, testutil.NewClock(noon), nil)

			res, err := svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, res.Streak)
			assert.Equal(t, tt.wantLongest, res.LongestStreak)

			stored := reload(t, db, user.ID)
			assert.Equal(t, tt.wantStreak, stored.CurrentStreak)
			assert.Equal(t, tt.wantLongest, stored.LongestStreak)
			require.NotNil(t, stored.LastActiveAt)
			assert.True(t, stored.LastActiveAt.Equal(noon))
			assert.GreaterOrEqual(t, stored.LongestStreak, stored.CurrentStreak)
		})
	}
}

func TestCompleteLesson_CalendarPolicyAcrossMidnight(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10)
	late := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	user := testutil.CreateUser(t, db, "u1", func(u *model.User) {
		u.LastActiveAt = &late
		u.CurrentStreak = 2
		u.LongestStreak = 2
	})
	rules := DefaultRules()
	rules.Engine = gamification.NewEngine(gamification.DefaultLevelTable(), gamification.CalendarDay{Location: time.UTC})
	svc := newProgressService(t, db, testutil.NewClock(late.Add(2*time.Minute)), rules)

	res, err := svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
}

func TestCompleteLesson_RecordsStreakDay(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10, 25)
	user := testutil.CreateUser(t, db, "u1")
	clock := testutil.NewClock(noon)
	svc := newProgressService(t, db, clock, nil)
	ctx := context.Background()

	_, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.CompleteLesson(ctx, user.ID, cat.Lessons[1].ID)
	require.NoError(t, err)

	days, err := svc.GetActivity(ctx, user.ID, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-10", days[0].Date)
	assert.Equal(t, 2, days[0].Lessons)
	assert.Equal(t, 35, days[0].XPEarned)
	assert.Equal(t, 1, days[0].StreakCount)
}

func TestCompleteLesson_UnlocksBadgesOnce(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 60, 60)
	user := testutil.CreateUser(t, db, "u1")
	testutil.CreateBadge(t, db, "first-lesson", gamification.LessonsCompleted{Value: 1}, 10)
	testutil.CreateBadge(t, db, "xp-100", gamification.XPAtLeast{Value: 100}, 50)
	testutil.CreateBadge(t, db, "python-2", gamification.SubjectLessons{Subject: "python", Value: 2}, 0)
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	ctx := context.Background()

	r1, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-lesson"}, r1.BadgesUnlocked)
	assert.Equal(t, 0, r1.BadgeXP)
	assert.Equal(t, 60, r1.TotalXP)

	r2, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[1].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"xp-100", "python-2"}, r2.BadgesUnlocked)

	var count int64
	db.Model(&model.UserBadge{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestCompleteLesson_AwardsBadgeBonusWhenEnabled(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 90)
	user := testutil.CreateUser(t, db, "u1")
	testutil.CreateBadge(t, db, "first-lesson", gamification.LessonsCompleted{Value: 1}, 10)
	rules := DefaultRules()
	rules.AwardBadgeBonus = true
	svc := newProgressService(t, db, testutil.NewClock(noon), rules)

	res, err := svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 90, res.XPEarned)
	assert.Equal(t, 10, res.BadgeXP)
	assert.Equal(t, 100, res.TotalXP)
	assert.Equal(t, 2, res.Level)

	stored := reload(t, db, user.ID)
	assert.Equal(t, 100, stored.XP)
	assert.Equal(t, 2, stored.Level)
}

func TestCompleteLesson_BadgeBonusCanUnlockXPBadge(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 90, 10)
	user := testutil.CreateUser(t, db, "u1")
	testutil.CreateBadge(t, db, "first-lesson", gamification.LessonsCompleted{Value: 1}, 10)
	testutil.CreateBadge(t, db, "xp-100", gamification.XPAtLeast{Value: 100}, 5)
	rules := DefaultRules()
	rules.AwardBadgeBonus = true
	svc := newProgressService(t, db, testutil.NewClock(noon), rules)

	// 90 + 10 的奖励正好达到 100，同一次完成内解锁 xp-100 并叠加其奖励
	res, err := svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first-lesson", "xp-100"}, res.BadgesUnlocked)
	assert.Equal(t, 15, res.BadgeXP)
	assert.Equal(t, 105, res.TotalXP)
	assert.Equal(t, 105, reload(t, db, user.ID).XP)

	res, err = svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[1].ID)
	require.NoError(t, err)
	assert.Empty(t, res.BadgesUnlocked)
	assert.Equal(t, 115, res.TotalXP)
}

func TestCompleteLesson_SkipsMalformedBadge(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10)
	user := testutil.CreateUser(t, db, "u1")
	require.NoError(t, db.Create(&model.Badge{Slug: "broken", Name: "broken", Criteria: []byte(`{"type":`)}).Error)
	testutil.CreateBadge(t, db, "mystery", gamification.UnknownCriterion{Raw: "moon_phase"}, 0)
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)

	res, err := svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)
	assert.Empty(t, res.BadgesUnlocked)
}

func TestCompleteLesson_NotFound(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10)
	user := testutil.CreateUser(t, db, "u1")
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	ctx := context.Background()

	_, err := svc.CompleteLesson(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = svc.CompleteLesson(ctx, 9999, cat.Lessons[0].ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	stored := reload(t, db, user.ID)
	assert.Equal(t, 0, stored.XP)
}

func TestCompleteLesson_ConcurrentRequestsAwardOnce(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 25)
	user := testutil.CreateUser(t, db, "u1")
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*CompletionResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CompleteLesson(context.Background(), user.ID, cat.Lessons[0].ID)
		}(i)
	}
	wg.Wait()

	awarded := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if !results[i].AlreadyCompleted {
			awarded++
		}
	}
	assert.Equal(t, 1, awarded)
	assert.Equal(t, 25, reload(t, db, user.ID).XP)
}

func TestCompleteLesson_SyncsMeasurableGoals(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10)
	user := testutil.CreateUser(t, db, "u1")
	goals := NewGoalService(repository.NewGoalRepository(db))
	ctx := context.Background()

	lessonGoal, err := goals.CreateGoal(ctx, user.ID, GoalRequest{Title: "One lesson", Type: "lessons", TargetValue: 1})
	require.NoError(t, err)
	xpGoal, err := goals.CreateGoal(ctx, user.ID, GoalRequest{Title: "Some XP", Type: "xp", TargetValue: 100})
	require.NoError(t, err)

	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	_, err = svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)

	var g1, g2 model.Goal
	require.NoError(t, db.First(&g1, "id = ?", lessonGoal.ID).Error)
	require.NoError(t, db.First(&g2, "id = ?", xpGoal.ID).Error)
	assert.True(t, g1.Completed)
	assert.Equal(t, 1, g1.CurrentValue)
	assert.False(t, g2.Completed)
	assert.Equal(t, 10, g2.CurrentValue)
}

func TestGetUserStats(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 120)
	user := testutil.CreateUser(t, db, "u1")
	clock := testutil.NewClock(noon)
	svc := newProgressService(t, db, clock, nil)
	ctx := context.Background()

	_, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[0].ID)
	require.NoError(t, err)

	stats, err := svc.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedLessons)
	assert.Equal(t, 1, stats.ActiveDays)
	assert.Equal(t, 2, stats.LevelInfo.Level)
	assert.Equal(t, 20, stats.LevelInfo.CurrentXPInLevel)
	assert.True(t, stats.StreakStatus.IsActive)

	clock.Advance(72 * time.Hour)
	stats, err = svc.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stats.StreakStatus.ShouldReset)

	_, err = svc.GetUserStats(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetSubjectProgress(t *testing.T) {
	db := testutil.DB(t)
	cat := testutil.CreateCatalog(t, db, "python", 10, 10, 10, 10)
	user := testutil.CreateUser(t, db, "u1")
	svc := newProgressService(t, db, testutil.NewClock(noon), nil)
	ctx := context.Background()

	_, err := svc.CompleteLesson(ctx, user.ID, cat.Lessons[1].ID)
	require.NoError(t, err)

	sp, err := svc.GetSubjectProgress(ctx, user.ID, "python")
	require.NoError(t, err)
	assert.Equal(t, 4, sp.TotalLessons)
	assert.Equal(t, 1, sp.CompletedLessons)
	assert.Equal(t, 25, sp.Percent)
	require.Len(t, sp.Topics, 1)
	require.Len(t, sp.Topics[0].Lessons, 4)
	assert.False(t, sp.Topics[0].Lessons[0].Completed)
	assert.True(t, sp.Topics[0].Lessons[1].Completed)

	_, err = svc.GetSubjectProgress(ctx, user.ID, "cobol")
	assert.ErrorIs(t, err, util.ErrSubjectNotFound)
}

func ptrTime(t time.Time) *time.Time { return &t }
