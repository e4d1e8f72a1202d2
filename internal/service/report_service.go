package service

import (
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ReportService 导出学习报告到对象存储
type ReportService struct {
	Progress     *ProgressService
	Achievements *AchievementService
	Goals        *GoalService
	CatalogRepo  *repository.CatalogRepository
	Storage      *StorageService
	Now          func() time.Time
}

func NewReportService(
	progress *ProgressService,
	achievements *AchievementService,
	goals *GoalService,
	catalogRepo *repository.CatalogRepository,
	storage *StorageService,
) *ReportService {
	return &ReportService{
		Progress:     progress,
		Achievements: achievements,
		Goals:        goals,
		CatalogRepo:  catalogRepo,
		Storage:      storage,
		Now:          time.Now,
	}
}

type SubjectSummaryLine struct {
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	CompletedLessons int    `json:"completedLessons"`
	TotalLessons     int    `json:"totalLessons"`
	Percent          int    `json:"percent"`
}

type ProgressReport struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Stats       *UserStats           `json:"stats"`
	Subjects    []SubjectSummaryLine `json:"subjects"`
	Badges      []BadgeView          `json:"badges"`
	Goals       []model.Goal         `json:"goals"`
	Activity    []ActivityDay        `json:"activity"`
}

type ReportResult struct {
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Build 汇总用户当前的学习数据
func (s *ReportService) Build(ctx context.Context, userID uint) (*ProgressReport, error) {
	stats, err := s.Progress.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.CatalogRepo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]SubjectSummaryLine, 0, len(subjects))
	for _, sub := range subjects {
		sp, err := s.Progress.GetSubjectProgress(ctx, userID, sub.Slug)
		if err != nil {
			return nil, err
		}
		lines = append(lines, SubjectSummaryLine{
			Slug:             sp.Slug,
			Name:             sp.Name,
			CompletedLessons: sp.CompletedLessons,
			TotalLessons:     sp.TotalLessons,
			Percent:          sp.Percent,
		})
	}

	badges, err := s.Achievements.GetBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.Goals.GetUserGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity, err := s.Progress.GetActivity(ctx, userID, util.DefaultActivityDays)
	if err != nil {
		return nil, err
	}

	return &ProgressReport{
		GeneratedAt: s.Now().UTC(),
		Stats:       stats,
		Subjects:    lines,
		Badges:      badges,
		Goals:       goals,
		Activity:    activity,
	}, nil
}

// Export 生成报告并上传，返回访问地址
func (s *ReportService) Export(ctx context.Context, userID uint) (*ReportResult, error) {
	report, err := s.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("reports/%d/progress-%s.json", userID, report.GeneratedAt.Format("20060102-150405"))
	url, err := s.Storage.UploadBytes(ctx, filename, data, util.MimeJSON)
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}

	logger.Log.Info("Progress report exported", zap.Uint("userID", userID), zap.String("file", filename))
	return &ReportResult{URL: url, Filename: filename, GeneratedAt: report.GeneratedAt}, nil
}
