package service

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"codepath_backend/pkg/monitoring"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AchievementService struct {
	BadgeRepo *repository.BadgeRepository
	UserRepo  *repository.UserRepository
	Cache     *repository.CacheRepository
	Rules     *RulesHolder
}

func NewAchievementService(
	badgeRepo *repository.BadgeRepository,
	userRepo *repository.UserRepository,
	cache *repository.CacheRepository,
	rules *RulesHolder,
) *AchievementService {
	return &AchievementService{
		BadgeRepo: badgeRepo,
		UserRepo:  userRepo,
		Cache:     cache,
		Rules:     rules,
	}
}

// BadgeView 徽章及其是否已获得
type BadgeView struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Category    string     `json:"category"`
	XPBonus     int        `json:"xpBonus"`
	Earned      bool       `json:"earned"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
}

type UserAchievements struct {
	TotalXP       int                    `json:"totalXp"`
	LevelInfo     gamification.LevelInfo `json:"levelInfo"`
	CurrentStreak int                    `json:"currentStreak"`
	LongestStreak int                    `json:"longestStreak"`
	EarnedCount   int                    `json:"earnedCount"`
	Badges        []BadgeView            `json:"badges"`
	Rank          int                    `json:"rank"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar,omitempty"`
}

func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) (*UserAchievements, error) {
	// 获取用户信息
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	badges, err := s.GetBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := 0
	for _, b := range badges {
		if b.Earned {
			earned++
		}
	}

	rank, err := s.rankOf(ctx, user)
	if err != nil {
		return nil, err
	}

	return &UserAchievements{
		TotalXP:       user.XP,
		LevelInfo:     s.Rules.Load().Engine.Levels.LevelOf(user.XP),
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
		EarnedCount:   earned,
		Badges:        badges,
		Rank:          rank,
	}, nil
}

// GetBadges 全部徽章，已获得的带解锁时间
func (s *AchievementService) GetBadges(ctx context.Context, userID uint) ([]BadgeView, error) {
	all, err := s.BadgeRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	mine, err := s.BadgeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[uint]time.Time, len(mine))
	for _, ub := range mine {
		unlocked[ub.BadgeID] = ub.UnlockedAt
	}

	out := make([]BadgeView, 0, len(all))
	for _, b := range all {
		v := BadgeView{
			Slug:        b.Slug,
			Name:        b.Name,
			Description: b.Description,
			Icon:        b.Icon,
			Category:    b.Category,
			XPBonus:     b.XPBonus,
		}
		if at, ok := unlocked[b.ID]; ok {
			at := at
			v.Earned = true
			v.UnlockedAt = &at
		}
		out = append(out, v)
	}
	return out, nil
}

// GetLeaderboard 优先读取 Redis 有序集合，不可用时回退到数据库
func (s *AchievementService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = util.DefaultLeaderboardLimit
	}
	if limit > util.MaxLeaderboardLimit {
		limit = util.MaxLeaderboardLimit
	}

	if s.leaderboardReady(ctx) {
		scores, err := s.Cache.LeaderboardTop(ctx, limit)
		switch {
		case err == nil:
			monitoring.CacheRequests.WithLabelValues("leaderboard", "hit").Inc()
			return s.entriesFromScores(ctx, scores)
		case errors.Is(err, repository.ErrCacheMiss):
			monitoring.CacheRequests.WithLabelValues("leaderboard", "miss").Inc()
		default:
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		}
	}

	users, err := s.UserRepo.FindTopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		leaderboard[i] = entryOf(i+1, &user)
	}
	return leaderboard, nil
}

// leaderboardReady Redis 有序集合是否包含全部用户，首次使用时从数据库重建
func (s *AchievementService) leaderboardReady(ctx context.Context) bool {
	if !s.Cache.Enabled() {
		return false
	}
	ready, err := s.Cache.LeaderboardReady(ctx)
	if err != nil {
		logger.Log.Warn("Leaderboard cache check failed", zap.Error(err))
		return false
	}
	if ready {
		return true
	}

	scores, err := s.UserRepo.AllXP(ctx)
	if err != nil {
		logger.Log.Warn("Failed to load users for leaderboard", zap.Error(err))
		return false
	}
	if err := s.Cache.RebuildLeaderboard(ctx, scores); err != nil {
		logger.Log.Warn("Leaderboard cache rebuild failed", zap.Error(err))
		return false
	}
	logger.Log.Info("Leaderboard cache rebuilt", zap.Int("users", len(scores)))
	return true
}

func (s *AchievementService) entriesFromScores(ctx context.Context, scores []repository.LeaderboardScore) ([]LeaderboardEntry, error) {
	ids := make([]uint, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.UserID)
	}
	users, err := s.UserRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]LeaderboardEntry, 0, len(scores))
	for _, sc := range scores {
		u, ok := byID[sc.UserID]
		if !ok {
			// 已删除的用户
			continue
		}
		out = append(out, entryOf(len(out)+1, u))
	}
	return out, nil
}

func entryOf(rank int, u *model.User) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:   rank,
		UserID: u.ID,
		User:   u.DisplayName(),
		XP:     u.XP,
		Level:  u.Level,
		Avatar: u.ImageURL,
	}
}

func (s *AchievementService) rankOf(ctx context.Context, user *model.User) (int, error) {
	if s.leaderboardReady(ctx) {
		rank, err := s.Cache.LeaderboardRank(ctx, user.XP)
		if err == nil {
			return rank, nil
		}
		logger.Log.Warn("Leaderboard rank lookup failed", zap.Error(err))
	}
	return s.UserRepo.RankByXP(ctx, user.XP)
}
