package service

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/gamification"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRules(t *testing.T) {
	r, err := NewRules(config.GamificationConfig{
		LevelThresholds:     []int{0, 50, 150},
		StreakPolicy:        "calendar",
		Timezone:            "Asia/Shanghai",
		AwardBadgeBonus:     true,
		RecommendationLimit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 50, 150}, r.Engine.Levels.Thresholds())
	assert.Equal(t, gamification.PolicyCalendar, r.Engine.Streak.Name())
	assert.True(t, r.AwardBadgeBonus)
	assert.Equal(t, 20, r.RecommendationLimit)

	_, err = NewRules(config.GamificationConfig{LevelThresholds: []int{10, 5}})
	assert.Error(t, err)
	_, err = NewRules(config.GamificationConfig{StreakPolicy: "weekly"})
	assert.Error(t, err)
}

func TestActivityDate(t *testing.T) {
	at := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)

	rolling := DefaultRules()
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), rolling.ActivityDate(at))

	shanghai, err := NewRules(config.GamificationConfig{StreakPolicy: "calendar", Timezone: "Asia/Shanghai"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), shanghai.ActivityDate(at))
}

func TestRulesHolderReload(t *testing.T) {
	h := NewRulesHolder(nil)
	assert.Equal(t, gamification.PolicyRolling, h.Load().Engine.Streak.Name())
	assert.False(t, h.Load().AwardBadgeBonus)

	h.Reload(&config.Config{Gamification: config.GamificationConfig{StreakPolicy: "calendar", AwardBadgeBonus: true}})
	assert.Equal(t, gamification.PolicyCalendar, h.Load().Engine.Streak.Name())
	assert.True(t, h.Load().AwardBadgeBonus)

	// 非法配置保留旧规则
	h.Reload(&config.Config{Gamification: config.GamificationConfig{LevelThresholds: []int{5}}})
	assert.Equal(t, gamification.PolicyCalendar, h.Load().Engine.Streak.Name())
	assert.True(t, h.Load().AwardBadgeBonus)
}
