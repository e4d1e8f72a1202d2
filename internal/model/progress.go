package model

import (
	"time"
)

// UserProgress 记录用户对课程的完成状态，(user_id, lesson_id) 唯一
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"userId"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_user_lesson;index" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	XPEarned    int        `gorm:"default:0" json:"xpEarned"`
	CompletedAt *time.Time `gorm:"index" json:"completedAt"`
	Lesson      *Lesson    `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
