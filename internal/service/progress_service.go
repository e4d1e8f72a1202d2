package service

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"codepath_backend/pkg/monitoring"
	"codepath_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	UserRepo     *repository.UserRepository
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	StreakRepo   *repository.StreakRepository
	BadgeRepo    *repository.BadgeRepository
	GoalRepo     *repository.GoalRepository
	Cache        *repository.CacheRepository
	Rules        *RulesHolder
	Now          func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	catalogRepo *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	streakRepo *repository.StreakRepository,
	badgeRepo *repository.BadgeRepository,
	goalRepo *repository.GoalRepository,
	cache *repository.CacheRepository,
	rules *RulesHolder,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		UserRepo:     userRepo,
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		StreakRepo:   streakRepo,
		BadgeRepo:    badgeRepo,
		GoalRepo:     goalRepo,
		Cache:        cache,
		Rules:        rules,
		Now:          time.Now,
	}
}

// CompletionResult 完成课程的结果
type CompletionResult struct {
	XPEarned         int                    `json:"xpEarned"`
	BadgeXP          int                    `json:"badgeXp"`
	TotalXP          int                    `json:"totalXp"`
	Level            int                    `json:"level"`
	LevelInfo        gamification.LevelInfo `json:"levelInfo"`
	LeveledUp        bool                   `json:"leveledUp"`
	Streak           int                    `json:"streak"`
	LongestStreak    int                    `json:"longestStreak"`
	BadgesUnlocked   []string               `json:"badgesUnlocked"`
	AlreadyCompleted bool                   `json:"alreadyCompleted"`
}

// CompleteLesson 在一个事务内完成课程：发放经验、更新等级与连续学习、评估徽章。
// 同一用户同一课程只会发放一次经验
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*CompletionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ProgressService.CompleteLesson",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("lesson.id", int64(lessonID)),
	)
	defer span.End()

	rules := s.Rules.Load()
	now := s.Now().UTC()

	var (
		result      *CompletionResult
		subjectSlug string
		prevLevel   int
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		progress := s.ProgressRepo.WithTx(tx)

		user, err := users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}
		prevLevel = user.Level

		lesson, err := s.CatalogRepo.WithTx(tx).FindLessonByID(ctx, lessonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrLessonNotFound
			}
			return fmt.Errorf("load lesson: %w", err)
		}
		if lesson.Topic != nil && lesson.Topic.Subject != nil {
			subjectSlug = lesson.Topic.Subject.Slug
		}

		existing, err := progress.FindByUserAndLesson(ctx, userID, lessonID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		if existing != nil && existing.Completed {
			result = &CompletionResult{
				TotalXP:          user.XP,
				Level:            user.Level,
				LevelInfo:        rules.Engine.Levels.LevelOf(user.XP),
				Streak:           user.CurrentStreak,
				LongestStreak:    user.LongestStreak,
				BadgesUnlocked:   []string{},
				AlreadyCompleted: true,
			}
			return nil
		}

		xp := lesson.EarnedXP()
		if xp < 0 || user.XP+xp < 0 {
			return util.ErrNegativeXP
		}

		snap, info := rules.Engine.Advance(snapshotOf(user), xp, now)

		completedAt := now
		if err := progress.Upsert(ctx, &model.UserProgress{
			UserID:      userID,
			LessonID:    lessonID,
			Completed:   true,
			XPEarned:    xp,
			CompletedAt: &completedAt,
		}); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		if err := s.StreakRepo.WithTx(tx).RecordDay(ctx, userID, rules.ActivityDate(now), snap.CurrentStreak, xp); err != nil {
			return fmt.Errorf("record streak day: %w", err)
		}

		stats, err := s.buildStats(ctx, progress, userID, snap)
		if err != nil {
			return err
		}

		unlocked, bonus, err := s.unlockBadges(ctx, s.BadgeRepo.WithTx(tx), userID, stats, now)
		if err != nil {
			return err
		}

		if rules.AwardBadgeBonus {
			// 奖励经验可能跨过经验类徽章的门槛，重复评估直到没有新徽章
			total := 0
			for bonus > 0 {
				total += bonus
				snap, info = rules.Engine.AddBonus(snap, bonus)
				stats.TotalXP = snap.XP

				var more []string
				more, bonus, err = s.unlockBadges(ctx, s.BadgeRepo.WithTx(tx), userID, stats, now)
				if err != nil {
					return err
				}
				unlocked = append(unlocked, more...)
			}
			bonus = total
		} else {
			bonus = 0
		}

		applySnapshot(user, snap)
		if err := users.UpdateProgress(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		if err := s.syncGoals(ctx, s.GoalRepo.WithTx(tx), userID, stats.TotalLessonsCompleted, snap); err != nil {
			return err
		}

		result = &CompletionResult{
			XPEarned:       xp,
			BadgeXP:        bonus,
			TotalXP:        snap.XP,
			Level:          snap.Level,
			LevelInfo:      info,
			LeveledUp:      snap.Level > prevLevel,
			Streak:         snap.CurrentStreak,
			LongestStreak:  snap.LongestStreak,
			BadgesUnlocked: unlocked,
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		outcome := "error"
		if errors.Is(err, util.ErrLessonNotFound) || errors.Is(err, util.ErrUserNotFound) {
			outcome = "not_found"
		}
		monitoring.LessonCompletions.WithLabelValues(subjectSlug, outcome).Inc()
		return nil, err
	}

	if result.AlreadyCompleted {
		monitoring.LessonCompletions.WithLabelValues(subjectSlug, "already_completed").Inc()
		return result, nil
	}

	s.afterCommit(ctx, userID, result)
	monitoring.LessonCompletions.WithLabelValues(subjectSlug, "completed").Inc()
	monitoring.XPAwarded.Add(float64(result.XPEarned + result.BadgeXP))
	for _, slug := range result.BadgesUnlocked {
		monitoring.BadgesUnlocked.WithLabelValues(slug).Inc()
	}
	if result.LeveledUp {
		monitoring.LevelUps.Inc()
	}

	logger.Log.Info("Lesson completed",
		zap.Uint("userID", userID),
		zap.Uint("lessonID", lessonID),
		zap.Int("xpEarned", result.XPEarned),
		zap.Int("totalXp", result.TotalXP),
		zap.Int("level", result.Level),
		zap.Int("streak", result.Streak),
		zap.Strings("badges", result.BadgesUnlocked),
	)
	return result, nil
}

func snapshotOf(u *model.User) gamification.ProgressSnapshot {
	return gamification.ProgressSnapshot{
		XP:            u.XP,
		Level:         u.Level,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		LastActiveAt:  u.LastActiveAt,
	}
}

func applySnapshot(u *model.User, s gamification.ProgressSnapshot) {
	u.XP = s.XP
	u.Level = s.Level
	u.CurrentStreak = s.CurrentStreak
	u.LongestStreak = s.LongestStreak
	u.LastActiveAt = s.LastActiveAt
}

// buildStats 读取事务内的统计，包含本次完成
func (s *ProgressService) buildStats(ctx context.Context, progress *repository.ProgressRepository, userID uint, snap gamification.ProgressSnapshot) (gamification.Stats, error) {
	total, err := progress.CountCompleted(ctx, userID)
	if err != nil {
		return gamification.Stats{}, fmt.Errorf("count completed: %w", err)
	}
	bySubject, err := progress.CompletedLessonCountsBySubject(ctx, userID)
	if err != nil {
		return gamification.Stats{}, fmt.Errorf("count by subject: %w", err)
	}
	return gamification.Stats{
		TotalLessonsCompleted: total,
		CurrentStreak:         snap.CurrentStreak,
		TotalXP:               snap.XP,
		SubjectLessonCounts:   bySubject,
		SubjectsStartedCount:  len(bySubject),
	}, nil
}

// unlockBadges 插入新解锁的徽章，返回 slug 列表与奖励经验合计
func (s *ProgressService) unlockBadges(ctx context.Context, badges *repository.BadgeRepository, userID uint, stats gamification.Stats, now time.Time) ([]string, int, error) {
	defs, err := badges.FindAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load badges: %w", err)
	}
	already, err := badges.UnlockedSlugs(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("load unlocked badges: %w", err)
	}

	bySlug := make(map[string]model.Badge, len(defs))
	rules := make([]gamification.BadgeRule, 0, len(defs))
	for _, b := range defs {
		c, err := gamification.ParseCriterion(b.Criteria)
		if err != nil {
			logger.Log.Warn("Skipping badge with malformed criteria", zap.String("badge", b.Slug), zap.Error(err))
			continue
		}
		bySlug[b.Slug] = b
		rules = append(rules, gamification.BadgeRule{Slug: b.Slug, Criterion: c})
	}

	unlocked := []string{}
	bonus := 0
	for _, slug := range gamification.NewlyUnlocked(rules, stats, already) {
		b := bySlug[slug]
		inserted, err := badges.Unlock(ctx, userID, b.ID, now)
		if err != nil {
			return nil, 0, fmt.Errorf("unlock badge %s: %w", slug, err)
		}
		if inserted {
			unlocked = append(unlocked, slug)
			bonus += b.XPBonus
		}
	}
	return unlocked, bonus, nil
}

// syncGoals 自动更新可度量的目标
func (s *ProgressService) syncGoals(ctx context.Context, goals *repository.GoalRepository, userID uint, lessons int, snap gamification.ProgressSnapshot) error {
	values := map[model.GoalType]int{
		model.GoalLessons: lessons,
		model.GoalXP:      snap.XP,
		model.GoalStreak:  snap.CurrentStreak,
	}
	for goalType, value := range values {
		open, err := goals.FindOpenByType(ctx, userID, goalType)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		for i := range open {
			g := &open[i]
			if g.CurrentValue == value {
				continue
			}
			g.CurrentValue = value
			g.Refresh()
			if err := goals.UpdateProgress(ctx, g); err != nil {
				return fmt.Errorf("update goal: %w", err)
			}
		}
	}
	return nil
}

// afterCommit 更新排行榜并清理推荐缓存，失败只记录日志
func (s *ProgressService) afterCommit(ctx context.Context, userID uint, r *CompletionResult) {
	if !s.Cache.Enabled() {
		return
	}
	if err := s.Cache.SetLeaderboardXP(ctx, userID, r.TotalXP); err != nil {
		logger.Log.Warn("Failed to update leaderboard", zap.Uint("userID", userID), zap.Error(err))
	}
	if err := s.Cache.InvalidateRecommendations(ctx, userID); err != nil {
		logger.Log.Warn("Failed to invalidate recommendations", zap.Uint("userID", userID), zap.Error(err))
	}
}

// UserStats 仪表盘统计
type UserStats struct {
	User             *model.User              `json:"user"`
	CompletedLessons int                      `json:"completedLessons"`
	ActiveDays       int                      `json:"activeDays"`
	LevelInfo        gamification.LevelInfo   `json:"levelInfo"`
	StreakStatus     gamification.StreakStatus `json:"streakStatus"`
}

func (s *ProgressService) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	completed, err := s.ProgressRepo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	activeDays, err := s.StreakRepo.CountActiveDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	rules := s.Rules.Load()
	return &UserStats{
		User:             user,
		CompletedLessons: completed,
		ActiveDays:       activeDays,
		LevelInfo:        rules.Engine.Levels.LevelOf(user.XP),
		StreakStatus:     gamification.StreakStatusOf(rules.Engine.Streak, user.LastActiveAt, s.Now().UTC()),
	}, nil
}

type LessonProgress struct {
	model.Lesson
	XP          int        `json:"xp"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

type TopicProgress struct {
	ID               uint                    `json:"id"`
	Slug             string                  `json:"slug"`
	Title            string                  `json:"title"`
	Emoji            string                  `json:"emoji"`
	Description      string                  `json:"description"`
	Difficulty       gamification.Difficulty `json:"difficulty"`
	PrerequisiteID   *uint                   `json:"prerequisiteId"`
	Lessons          []LessonProgress        `json:"lessons"`
	CompletedLessons int                     `json:"completedLessons"`
	TotalLessons     int                     `json:"totalLessons"`
}

type SubjectProgress struct {
	Slug             string          `json:"slug"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	Color            string          `json:"color"`
	Topics           []TopicProgress `json:"topics"`
	CompletedLessons int             `json:"completedLessons"`
	TotalLessons     int             `json:"totalLessons"`
	Percent          int             `json:"percent"`
}

// GetSubjectProgress 科目下每个主题、课程的完成情况
func (s *ProgressService) GetSubjectProgress(ctx context.Context, userID uint, slug string) (*SubjectProgress, error) {
	subject, err := s.CatalogRepo.FindSubjectBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}

	records, err := s.ProgressRepo.FindBySubject(ctx, userID, subject.ID)
	if err != nil {
		return nil, err
	}
	done := make(map[uint]model.UserProgress, len(records))
	for _, r := range records {
		if r.Completed {
			done[r.LessonID] = r
		}
	}

	out := &SubjectProgress{
		Slug:        subject.Slug,
		Name:        subject.Name,
		Description: subject.Description,
		Icon:        subject.Icon,
		Color:       subject.Color,
		Topics:      make([]TopicProgress, 0, len(subject.Topics)),
	}
	for _, t := range subject.Topics {
		tp := TopicProgress{
			ID:             t.ID,
			Slug:           t.Slug,
			Title:          t.Title,
			Emoji:          t.Emoji,
			Description:    t.Description,
			Difficulty:     t.Difficulty,
			PrerequisiteID: t.PrerequisiteID,
			Lessons:        make([]LessonProgress, 0, len(t.Lessons)),
			TotalLessons:   len(t.Lessons),
		}
		for _, l := range t.Lessons {
			lp := LessonProgress{Lesson: l, XP: l.EarnedXP()}
			if p, ok := done[l.ID]; ok {
				lp.Completed = true
				lp.CompletedAt = p.CompletedAt
				tp.CompletedLessons++
			}
			tp.Lessons = append(tp.Lessons, lp)
		}
		out.CompletedLessons += tp.CompletedLessons
		out.TotalLessons += tp.TotalLessons
		out.Topics = append(out.Topics, tp)
	}
	if out.TotalLessons > 0 {
		out.Percent = out.CompletedLessons * 100 / out.TotalLessons
	}
	return out, nil
}

// ActivityDay 热力图中的一天
type ActivityDay struct {
	Date        string `json:"date"`
	StreakCount int    `json:"streakCount"`
	Lessons     int    `json:"lessons"`
	XPEarned    int    `json:"xpEarned"`
}

// GetActivity 最近 days 天（含今天）的学习活动
func (s *ProgressService) GetActivity(ctx context.Context, userID uint, days int) ([]ActivityDay, error) {
	if days <= 0 {
		days = util.DefaultActivityDays
	}
	if days > util.MaxActivityDays {
		days = util.MaxActivityDays
	}
	to := s.Rules.Load().ActivityDate(s.Now().UTC())
	from := to.AddDate(0, 0, -(days - 1))

	rows, err := s.StreakRepo.FindRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, ActivityDay{
			Date:        r.Date.UTC().Format(util.DateFormat),
			StreakCount: r.StreakCount,
			Lessons:     r.Lessons,
			XPEarned:    r.XPEarned,
		})
	}
	return out, nil
}
