package model

import (
	"time"

	"gorm.io/datatypes"
)

// Badge 徽章定义，Criteria 为 {"type": "...", "value": n, "subject": "..."}
type Badge struct {
	BaseModel
	Slug        string         `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	Icon        string         `gorm:"size:32" json:"icon"`
	Category    string         `gorm:"size:32;index" json:"category"`
	Criteria    datatypes.JSON `json:"criteria" swaggertype:"object"`
	XPBonus     int            `gorm:"default:0" json:"xpBonus"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	BaseModel
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"userId"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badgeId"`
	UnlockedAt time.Time `gorm:"not null" json:"unlockedAt"`
	Badge      *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
