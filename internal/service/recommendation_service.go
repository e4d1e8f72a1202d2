package service

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"codepath_backend/pkg/monitoring"
	"context"
	"errors"

	"go.uber.org/zap"
)

type RecommendationService struct {
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	Cache        *repository.CacheRepository
	Rules        *RulesHolder
}

func NewRecommendationService(
	catalogRepo *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	cache *repository.CacheRepository,
	rules *RulesHolder,
) *RecommendationService {
	return &RecommendationService{
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
		Rules:        rules,
	}
}

// NormalizeLimit 缺省使用配置值，上限 20
func (s *RecommendationService) NormalizeLimit(limit int) int {
	if limit <= 0 {
		limit = s.Rules.Load().RecommendationLimit
	}
	if limit > util.MaxRecommendationLimit {
		limit = util.MaxRecommendationLimit
	}
	return limit
}

// GetRecommendations 未登录用户返回空列表；结果按用户缓存
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uint, limit int) ([]gamification.Recommendation, error) {
	if userID == 0 {
		return []gamification.Recommendation{}, nil
	}
	limit = s.NormalizeLimit(limit)

	var cached []gamification.Recommendation
	switch err := s.Cache.GetRecommendations(ctx, userID, limit, &cached); {
	case err == nil:
		monitoring.CacheRequests.WithLabelValues("recommendations", "hit").Inc()
		return cached, nil
	case errors.Is(err, repository.ErrCacheMiss):
		monitoring.CacheRequests.WithLabelValues("recommendations", "miss").Inc()
	case errors.Is(err, repository.ErrCacheDisabled):
	default:
		logger.Log.Warn("Recommendation cache read failed", zap.Uint("userID", userID), zap.Error(err))
	}

	topics, err := s.CatalogRepo.ListTopicsOrdered(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.ProgressRepo.CompletedTopicIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ProgressRepo.RecentDifficulties(ctx, userID, gamification.RecentLimit)
	if err != nil {
		return nil, err
	}

	recs := gamification.Recommend(topics, completed, recent, limit)

	if s.Cache.Enabled() {
		if err := s.Cache.SetRecommendations(ctx, userID, limit, recs, s.Rules.Load().RecommendationTTL); err != nil {
			logger.Log.Warn("Recommendation cache write failed", zap.Uint("userID", userID), zap.Error(err))
		}
	}
	return recs, nil
}

// DifficultyStat 某一难度的完成情况
type DifficultyStat struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// GetDifficultyStats 完成数按课程难度统计，总数按主题难度统计
func (s *RecommendationService) GetDifficultyStats(ctx context.Context, userID uint) (map[gamification.Difficulty]DifficultyStat, error) {
	completed, err := s.ProgressRepo.CompletedByDifficulty(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.CatalogRepo.CountTopicsByDifficulty(ctx)
	if err != nil {
		return nil, err
	}

	out := map[gamification.Difficulty]DifficultyStat{
		gamification.Beginner:     {},
		gamification.Intermediate: {},
		gamification.Advanced:     {},
	}
	for d := range out {
		out[d] = DifficultyStat{Completed: completed[d], Total: totals[d]}
	}
	return out, nil
}
