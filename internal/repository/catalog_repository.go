package repository

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// CatalogRepository 科目、主题与课程的只读访问
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: tx}
}

// SubjectSummary 科目列表项
type SubjectSummary struct {
	model.Subject
	TopicCount  int `json:"topicCount"`
	LessonCount int `json:"lessonCount"`
}

func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]SubjectSummary, error) {
	var out []SubjectSummary
	err := r.DB.WithContext(ctx).
		Table("subjects").
		Select(`subjects.*,
			(SELECT COUNT(*) FROM topics WHERE topics.subject_id = subjects.id AND topics.deleted_at IS NULL) AS topic_count,
			(SELECT COUNT(*) FROM lessons JOIN topics ON topics.id = lessons.topic_id
				WHERE topics.subject_id = subjects.id AND lessons.deleted_at IS NULL AND topics.deleted_at IS NULL) AS lesson_count`).
		Where("subjects.deleted_at IS NULL").
		Order("subjects.sort_order ASC").
		Scan(&out).Error
	return out, err
}

// FindSubjectBySlug 加载科目及其按顺序排列的主题与课程
func (r *CatalogRepository) FindSubjectBySlug(ctx context.Context, slug string) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.WithContext(ctx).
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Topics.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("slug = ?", slug).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindLessonByID 加载课程及所属主题和科目
func (r *CatalogRepository) FindLessonByID(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).
		Preload("Topic").
		Preload("Topic.Subject").
		First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

type topicRow struct {
	ID             uint
	SubjectID      uint
	SubjectName    string
	SubjectSlug    string
	Title          string
	Emoji          string
	Difficulty     gamification.Difficulty
	PrerequisiteID *uint
}

// ListTopicsOrdered 按科目顺序、主题顺序返回推荐所需的主题
func (r *CatalogRepository) ListTopicsOrdered(ctx context.Context) ([]gamification.Topic, error) {
	var rows []topicRow
	err := r.DB.WithContext(ctx).
		Table("topics").
		Select("topics.id, topics.subject_id, subjects.name AS subject_name, subjects.slug AS subject_slug, topics.title, topics.emoji, topics.difficulty, topics.prerequisite_id").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("topics.deleted_at IS NULL AND subjects.deleted_at IS NULL").
		Order("subjects.sort_order ASC").
		Order("topics.sort_order ASC").
		Order("topics.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	topics := make([]gamification.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, gamification.Topic(row))
	}
	return topics, nil
}

// CountTopicsByDifficulty 各难度的主题数量
func (r *CatalogRepository) CountTopicsByDifficulty(ctx context.Context) (map[gamification.Difficulty]int, error) {
	var rows []struct {
		Difficulty gamification.Difficulty
		Count      int
	}
	err := r.DB.WithContext(ctx).Model(&model.Topic{}).
		Select("difficulty, COUNT(*) AS count").
		Group("difficulty").
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
