package service

import (
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CatalogService struct {
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, progressRepo *repository.ProgressRepository) *CatalogService {
	return &CatalogService{CatalogRepo: catalogRepo, ProgressRepo: progressRepo}
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]repository.SubjectSummary, error) {
	return s.CatalogRepo.ListSubjects(ctx)
}

func (s *CatalogService) GetSubject(ctx context.Context, slug string) (*model.Subject, error) {
	subject, err := s.CatalogRepo.FindSubjectBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}
	return subject, nil
}

type LessonDetail struct {
	*model.Lesson
	XP          int    `json:"xp"`
	SubjectSlug string `json:"subjectSlug"`
	Completed   bool   `json:"completed"`
}

func (s *CatalogService) GetLesson(ctx context.Context, userID, lessonID uint) (*LessonDetail, error) {
	lesson, err := s.CatalogRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	detail := &LessonDetail{Lesson: lesson, XP: lesson.EarnedXP()}
	if lesson.Topic != nil && lesson.Topic.Subject != nil {
		detail.SubjectSlug = lesson.Topic.Subject.Slug
	}
	if userID != 0 {
		p, err := s.ProgressRepo.FindByUserAndLesson(ctx, userID, lessonID)
		if err != nil {
			return nil, err
		}
		detail.Completed = p != nil && p.Completed
	}
	return detail, nil
}
