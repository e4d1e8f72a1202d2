package repository

import (
	"codepath_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) WithTx(tx *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: tx}
}

func (r *BadgeRepository) FindAll(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&badges).Error
	return badges, err
}

// FindByUserID 用户已解锁的徽章，按解锁时间倒序
func (r *BadgeRepository) FindByUserID(ctx context.Context, userID uint) ([]model.UserBadge, error) {
	var out []model.UserBadge
	err := r.DB.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&out).Error
	return out, err
}

// UnlockedSlugs 已解锁徽章的 slug 集合
func (r *BadgeRepository) UnlockedSlugs(ctx context.Context, userID uint) (map[string]bool, error) {
	var slugs []string
	err := r.DB.WithContext(ctx).
		Table("user_badges").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ? AND user_badges.deleted_at IS NULL", userID).
		Pluck("badges.slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		out[s] = true
	}
	return out, nil
}

// Unlock 记录解锁，已存在时忽略。返回是否真正插入
func (r *BadgeRepository) Unlock(ctx context.Context, userID, badgeID uint, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserBadge{
		UserID:     userID,
		BadgeID:    badgeID,
		UnlockedAt: at,
	})
	return res.RowsAffected > 0, res.Error
}
