package repository

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// FindByUserAndLesson 不存在时返回 nil, nil
func (r *ProgressRepository) FindByUserAndLesson(ctx context.Context, userID, lessonID uint) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert 依赖 (user_id, lesson_id) 唯一索引，重复完成只更新同一行
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.UserProgress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "xp_earned", "completed_at", "updated_at"}),
	}).Create(p).Error
}

func (r *ProgressRepository) CountCompleted(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return int(count), err
}

// CompletedLessonCountsBySubject 每个科目（slug）已完成的课程数
func (r *ProgressRepository) CompletedLessonCountsBySubject(ctx context.Context, userID uint) (map[string]int, error) {
	var rows []struct {
		Slug  string
		Count int
	}
	err := r.DB.WithContext(ctx).
		Table("user_progress").
		Select("subjects.slug AS slug, COUNT(*) AS count").
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Joins("JOIN topics ON topics.id = lessons.topic_id").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ? AND user_progress.deleted_at IS NULL", userID, true).
		Group("subjects.slug").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Slug] = row.Count
	}
	return out, nil
}

// CompletedTopicIDs 至少完成一节课程的主题
func (r *ProgressRepository) CompletedTopicIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("user_progress").
		Distinct("lessons.topic_id").
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ? AND user_progress.deleted_at IS NULL", userID, true).
		Pluck("lessons.topic_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CompletedLessonIDs 用户已完成的课程集合
func (r *ProgressRepository) CompletedLessonIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// RecentDifficulties 最近完成的课程难度，最新在前
func (r *ProgressRepository) RecentDifficulties(ctx context.Context, userID uint, limit int) ([]gamification.Difficulty, error) {
	var out []gamification.Difficulty
	err := r.DB.WithContext(ctx).
		Table("user_progress").
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ? AND user_progress.deleted_at IS NULL", userID, true).
		Order("user_progress.completed_at DESC").
		Order("user_progress.id DESC").
		Limit(limit).
		Pluck("lessons.difficulty", &out).Error
	return out, err
}

// CompletedByDifficulty 按课程难度统计完成数
func (r *ProgressRepository) CompletedByDifficulty(ctx context.Context, userID uint) (map[gamification.Difficulty]int, error) {
	var rows []struct {
		Difficulty gamification.Difficulty
		Count      int
	}
	err := r.DB.WithContext(ctx).
		Table("user_progress").
		Select("lessons.difficulty AS difficulty, COUNT(*) AS count").
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ? AND user_progress.deleted_at IS NULL", userID, true).
		Group("lessons.difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[gamification.Difficulty]int, len(rows))
	for _, row := range rows {
		out[row.Difficulty] = row.Count
	}
	return out, nil
}

// FindBySubject 某科目下用户的全部完成记录
func (r *ProgressRepository) FindBySubject(ctx context.Context, userID, subjectID uint) ([]model.UserProgress, error) {
	var out []model.UserProgress
	err := r.DB.WithContext(ctx).
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Joins("JOIN topics ON topics.id = lessons.topic_id").
		Where("user_progress.user_id = ? AND topics.subject_id = ?", userID, subjectID).
		Find(&out).Error
	return out, err
}
