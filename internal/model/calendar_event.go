package model

import "time"

const DefaultEventType = "study"

// CalendarEvent 用户的学习日程
type CalendarEvent struct {
	UUIDBase
	UserID      uint       `gorm:"index:idx_user_event_date;not null" json:"userId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"index:idx_user_event_date;not null" json:"date"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Type        string     `gorm:"size:20;default:'study'" json:"type"`
	SubjectID   *uint      `json:"subjectId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
