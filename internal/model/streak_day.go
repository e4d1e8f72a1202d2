package model

import (
	"time"
)

// StreakDay 记录用户每天的学习活动，用于活跃热力图
// swagger:model StreakDay
type StreakDay struct {
	BaseModel
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_streak_date" json:"userId"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_user_streak_date" json:"date"`
	StreakCount int       `gorm:"default:1" json:"streakCount"` // 当天的连续天数
	Lessons     int       `gorm:"default:0" json:"lessons"`
	XPEarned    int       `gorm:"default:0" json:"xpEarned"`
}

func (StreakDay) TableName() string {
	return "streak_days"
}
