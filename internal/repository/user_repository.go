package repository

import (
	"codepath_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Level < 1 {
		user.Level = 1
	}
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

// FindByIDForUpdate 加行锁读取用户，必须在事务中调用
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	return &user, err
}

// UpsertProfile 按外部 ID 创建或更新资料字段，不触碰进度字段
func (r *UserRepository) UpsertProfile(ctx context.Context, user *model.User) error {
	if user.Level < 1 {
		user.Level = 1
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "image_url", "updated_at"}),
	}).Create(user).Error
}

// UpdateProgress 写回经验、等级与连续学习字段
func (r *UserRepository) UpdateProgress(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"xp":             user.XP,
			"level":          user.Level,
			"current_streak": user.CurrentStreak,
			"longest_streak": user.LongestStreak,
			"last_active_at": user.LastActiveAt,
		}).Error
}

// DeleteByExternalID 物理删除用户及其进度、连续学习、徽章、目标和日程
func (r *UserRepository) DeleteByExternalID(ctx context.Context, externalID string) (int64, error) {
	var deleted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Unscoped().Where("external_id = ?", externalID).First(&user).Error; err != nil {
			return err
		}
		owned := []interface{}{
			&model.UserProgress{}, &model.StreakDay{}, &model.UserBadge{}, &model.Goal{}, &model.CalendarEvent{},
		}
		for _, m := range owned {
			if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Unscoped().Delete(&user)
		deleted = res.RowsAffected
		return res.Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return deleted, err
}

func (r *UserRepository) FindTopByXP(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).Order("xp DESC").Order("id ASC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// AllXP 全部用户的经验，用于重建排行榜
func (r *UserRepository) AllXP(ctx context.Context) ([]LeaderboardScore, error) {
	var scores []LeaderboardScore
	err := r.DB.WithContext(ctx).Model(&model.User{}).Select("id AS user_id, xp").Scan(&scores).Error
	return scores, err
}

// RankByXP 经验严格高于该用户的人数 + 1
func (r *UserRepository) RankByXP(ctx context.Context, xp int) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("xp > ?", xp).Count(&count).Error
	return int(count) + 1, err
}
