package model

import (
	"time"
)

// swagger:model User
// 用户由外部身份服务创建，本地只保存学习进度
type User struct {
	BaseModel
	ExternalID    string     `gorm:"size:64;uniqueIndex;not null" json:"externalId"`
	Email         string     `gorm:"size:100;index" json:"email"`
	FirstName     string     `gorm:"size:100" json:"firstName"`
	LastName      string     `gorm:"size:100" json:"lastName"`
	ImageURL      string     `gorm:"size:255" json:"imageUrl"`
	XP            int        `gorm:"default:0;not null" json:"xp"`
	Level         int        `gorm:"default:1;not null" json:"level"`
	CurrentStreak int        `gorm:"default:0;not null" json:"currentStreak"`
	LongestStreak int        `gorm:"default:0;not null" json:"longestStreak"`
	LastActiveAt  *time.Time `json:"lastActiveAt"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 排行榜等场景使用的展示名
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
