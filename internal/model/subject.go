package model

import "codepath_backend/internal/gamification"

// swagger:model Subject
type Subject struct {
	BaseModel
	Slug        string  `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Icon        string  `gorm:"size:32" json:"icon"`
	Color       string  `gorm:"size:32" json:"color"`
	Order       int     `gorm:"column:sort_order;default:0" json:"order"`
	Topics      []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}

// swagger:model Topic
type Topic struct {
	BaseModel
	SubjectID      uint                    `gorm:"not null;uniqueIndex:idx_subject_topic_slug" json:"subjectId"`
	Slug           string                  `gorm:"size:64;not null;uniqueIndex:idx_subject_topic_slug" json:"slug"`
	Title          string                  `gorm:"size:200;not null" json:"title"`
	Emoji          string                  `gorm:"size:16" json:"emoji"`
	Description    string                  `gorm:"type:text" json:"description"`
	Order          int                     `gorm:"column:sort_order;default:0" json:"order"`
	Difficulty     gamification.Difficulty `gorm:"size:20;default:'beginner'" json:"difficulty"`
	PrerequisiteID *uint                   `json:"prerequisiteId"`
	Subject        *Subject                `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Lessons        []Lesson                `gorm:"foreignKey:TopicID" json:"lessons,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	TopicID    uint                    `gorm:"not null;index" json:"topicId"`
	Slug       string                  `gorm:"size:64;not null" json:"slug"`
	Title      string                  `gorm:"size:200;not null" json:"title"`
	Content    string                  `gorm:"type:text" json:"content"`
	Order      int                     `gorm:"column:sort_order;default:0" json:"order"`
	Difficulty gamification.Difficulty `gorm:"size:20;default:'beginner'" json:"difficulty"`
	XPReward   int                     `gorm:"default:0" json:"xpReward"`
	Topic      *Topic                  `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// EarnedXP 课程完成可获得的经验
func (l *Lesson) EarnedXP() int {
	return gamification.LessonXP(l.XPReward, l.Difficulty)
}
