package gamification

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

// StreakStatus 连续学习状态的迁移结果
type StreakStatus struct {
	IsActive        bool `json:"isActive"`
	ShouldIncrement bool `json:"shouldIncrement"`
	ShouldReset     bool `json:"shouldReset"`
}

// StreakPolicy 决定两次活动之间相隔多少天
type StreakPolicy interface {
	Name() string
	ElapsedDays(last, now time.Time) int
}

// RollingWindow 按毫秒差整除 24 小时计算天数，23:59 与次日 00:01 视为同一天
type RollingWindow struct{}

func (RollingWindow) Name() string { return PolicyRolling }

func (RollingWindow) ElapsedDays(last, now time.Time) int {
	diff := now.Sub(last)
	if diff < 0 {
		return 0
	}
	return int(diff / day)
}

// CalendarDay 按指定时区的日历日期计算天数，跨过午夜即算一天
type CalendarDay struct {
	Location *time.Location
}

func (CalendarDay) Name() string { return PolicyCalendar }

func (p CalendarDay) ElapsedDays(last, now time.Time) int {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	l := last.In(loc)
	n := now.In(loc)
	// 用 UTC 午夜比较，避免夏令时导致的 23/25 小时
	ld := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
	nd := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	if nd.Before(ld) {
		return 0
	}
	return int(nd.Sub(ld) / day)
}

const (
	PolicyRolling  = "rolling"
	PolicyCalendar = "calendar"
)

// ParseStreakPolicy 根据配置名称构造策略，空值使用 rolling
func ParseStreakPolicy(name, timezone string) (StreakPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyRolling:
		return RollingWindow{}, nil
	case PolicyCalendar:
		loc := time.UTC
		if timezone != "" {
			l, err := time.LoadLocation(timezone)
			if err != nil {
				return nil, err
			}
			loc = l
		}
		return CalendarDay{Location: loc}, nil
	}
	return nil, ErrUnknownPolicy
}

// StreakStatusOf 根据上次活动时间与当前时间给出迁移决定
func StreakStatusOf(policy StreakPolicy, lastActiveAt *time.Time, now time.Time) StreakStatus {
	if lastActiveAt == nil || lastActiveAt.IsZero() {
		return StreakStatus{IsActive: false, ShouldIncrement: true, ShouldReset: false}
	}
	if policy == nil {
		policy = RollingWindow{}
	}

	switch policy.ElapsedDays(*lastActiveAt, now) {
	case 0:
		return StreakStatus{IsActive: true, ShouldIncrement: false, ShouldReset: false}
	case 1:
		return StreakStatus{IsActive: true, ShouldIncrement: true, ShouldReset: false}
	default:
		return StreakStatus{IsActive: false, ShouldIncrement: false, ShouldReset: true}
	}
}

// Apply 计算新的当前连续天数与最长连续天数
func (s StreakStatus) Apply(current, longest int) (int, int) {
	next := current
	switch {
	case s.ShouldReset:
		next = 1
	case s.ShouldIncrement:
		next = current + 1
	}
	if next > longest {
		longest = next
	}
	return next, longest
}
