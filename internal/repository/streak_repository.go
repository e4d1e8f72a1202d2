package repository

import (
	"codepath_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakRepository 每日学习活动
type StreakRepository struct {
	DB *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) WithTx(tx *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: tx}
}

// RecordDay 当天第一次活动插入，之后累加课程数与经验并刷新连续天数
func (r *StreakRepository) RecordDay(ctx context.Context, userID uint, date time.Time, streak, xp int) error {
	day := &model.StreakDay{
		UserID:      userID,
		Date:        date,
		StreakCount: streak,
		Lessons:     1,
		XPEarned:    xp,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"streak_count": streak,
			"lessons":      gorm.Expr("streak_days.lessons + 1"),
			"xp_earned":    gorm.Expr("streak_days.xp_earned + ?", xp),
			"updated_at":   time.Now(),
		}),
	}).Create(day).Error
}

// FindRange 闭区间 [from, to] 内的活动记录，按日期升序
func (r *StreakRepository) FindRange(ctx context.Context, userID uint, from, to time.Time) ([]model.StreakDay, error) {
	var days []model.StreakDay
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

// CountActiveDays 有活动的天数
func (r *StreakRepository) CountActiveDays(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.StreakDay{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
