package gamification

import "time"

// ProgressSnapshot 用户进度快照，Level 总是由 XP 推导
type ProgressSnapshot struct {
	XP            int
	Level         int
	CurrentStreak int
	LongestStreak int
	LastActiveAt  *time.Time
}

// Engine 组合等级表与连续学习策略，本身无状态，可并发使用
type Engine struct {
	Levels LevelTable
	Streak StreakPolicy
}

// NewEngine 创建规则引擎，零值参数使用默认值
func NewEngine(levels LevelTable, policy StreakPolicy) *Engine {
	if len(levels.thresholds) == 0 {
		levels = DefaultLevelTable()
	}
	if policy == nil {
		policy = RollingWindow{}
	}
	return &Engine{Levels: levels, Streak: policy}
}

// Advance 在快照上应用一次课程完成，返回新的快照与等级信息
func (e *Engine) Advance(s ProgressSnapshot, xpEarned int, now time.Time) (ProgressSnapshot, LevelInfo) {
	next := s
	next.XP = s.XP + xpEarned
	info := e.Levels.LevelOf(next.XP)
	next.Level = info.Level

	status := StreakStatusOf(e.Streak, s.LastActiveAt, now)
	next.CurrentStreak, next.LongestStreak = status.Apply(s.CurrentStreak, s.LongestStreak)

	at := now
	next.LastActiveAt = &at
	return next, info
}

// AddBonus 追加徽章奖励经验并重新计算等级
func (e *Engine) AddBonus(s ProgressSnapshot, bonus int) (ProgressSnapshot, LevelInfo) {
	s.XP += bonus
	info := e.Levels.LevelOf(s.XP)
	s.Level = info.Level
	return s, info
}
