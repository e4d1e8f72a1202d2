package repository

import (
	"codepath_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// GoalRepository 处理学习目标的数据访问
type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

func (r *GoalRepository) WithTx(tx *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: tx}
}

// Create 创建新的学习目标
func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Create(goal).Error
}

// UpdateProgress 更新当前值与完成标记
func (r *GoalRepository) UpdateProgress(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"current_value": goal.CurrentValue,
			"completed":     goal.Completed,
		}).Error
}

// Delete 删除学习目标，返回受影响行数
func (r *GoalRepository) Delete(ctx context.Context, id string, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Goal{})
	return res.RowsAffected, res.Error
}

// FindByIDAndUserID 仅返回属于该用户的目标
func (r *GoalRepository) FindByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// FindByUserID 获取用户的所有学习目标，最新在前
func (r *GoalRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error
	return goals, err
}

// FindOpenByType 未完成的某类目标，用于自动同步进度
func (r *GoalRepository) FindOpenByType(ctx context.Context, userID uint, goalType model.GoalType) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND type = ? AND completed = ?", userID, goalType, false).
		Find(&goals).Error
	return goals, err
}
