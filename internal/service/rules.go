package service

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Rules 运行时的游戏化参数，整体替换，不原地修改
type Rules struct {
	Engine              *gamification.Engine
	AwardBadgeBonus     bool
	RecommendationLimit int
	RecommendationTTL   time.Duration
}

func NewRules(cfg config.GamificationConfig) (*Rules, error) {
	levels := gamification.DefaultLevelTable()
	if len(cfg.LevelThresholds) > 0 {
		t, err := gamification.NewLevelTable(cfg.LevelThresholds)
		if err != nil {
			return nil, err
		}
		levels = t
	}

	policy, err := gamification.ParseStreakPolicy(cfg.StreakPolicy, cfg.Timezone)
	if err != nil {
		return nil, err
	}

	limit := cfg.RecommendationLimit
	if limit <= 0 {
		limit = util.DefaultRecommendationLimit
	}
	if limit > util.MaxRecommendationLimit {
		limit = util.MaxRecommendationLimit
	}

	return &Rules{
		Engine:              gamification.NewEngine(levels, policy),
		AwardBadgeBonus:     cfg.AwardBadgeBonus,
		RecommendationLimit: limit,
		RecommendationTTL:   cfg.RecommendationCacheTTL,
	}, nil
}

// DefaultRules 默认等级表、rolling 策略、不发放徽章奖励
func DefaultRules() *Rules {
	return &Rules{
		Engine:              gamification.NewEngine(gamification.DefaultLevelTable(), gamification.RollingWindow{}),
		RecommendationLimit: util.DefaultRecommendationLimit,
		RecommendationTTL:   10 * time.Minute,
	}
}

// ActivityDate 活动所属的日期：calendar 策略使用其时区，否则使用 UTC
func (r *Rules) ActivityDate(now time.Time) time.Time {
	loc := time.UTC
	if p, ok := r.Engine.Streak.(gamification.CalendarDay); ok && p.Location != nil {
		loc = p.Location
	}
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RulesHolder 并发安全的规则容器，支持配置热更新
type RulesHolder struct {
	p atomic.Pointer[Rules]
}

func NewRulesHolder(r *Rules) *RulesHolder {
	h := &RulesHolder{}
	if r == nil {
		r = DefaultRules()
	}
	h.p.Store(r)
	return h
}

func (h *RulesHolder) Load() *Rules {
	return h.p.Load()
}

// Reload 配置变更回调，新配置非法时保留旧规则
func (h *RulesHolder) Reload(cfg *config.Config) {
	r, err := NewRules(cfg.Gamification)
	if err != nil {
		logger.Log.Warn("Invalid gamification config, keeping previous rules", zap.Error(err))
		return
	}
	h.p.Store(r)
	logger.Log.Info("Gamification rules reloaded",
		zap.String("streakPolicy", r.Engine.Streak.Name()),
		zap.Bool("awardBadgeBonus", r.AwardBadgeBonus),
		zap.Int("recommendationLimit", r.RecommendationLimit),
	)
}
