package model

import "time"

type GoalType string

const (
	GoalLessons GoalType = "lessons"
	GoalXP      GoalType = "xp"
	GoalStreak  GoalType = "streak"
	GoalCustom  GoalType = "custom"
)

type Goal struct {
	UUIDBase
	UserID       uint       `gorm:"index;not null" json:"userId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Type         GoalType   `gorm:"size:20;default:'custom'" json:"type"`
	TargetValue  int        `gorm:"not null" json:"targetValue"`
	CurrentValue int        `gorm:"default:0" json:"currentValue"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	TargetDate   *time.Time `json:"targetDate"`
}

func (Goal) TableName() string {
	return "goals"
}

// Refresh 根据当前值更新完成标记
func (g *Goal) Refresh() {
	g.Completed = g.TargetValue > 0 && g.CurrentValue >= g.TargetValue
}
