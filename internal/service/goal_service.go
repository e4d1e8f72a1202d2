package service

import (
	"codepath_backend/internal/model"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type GoalService struct {
	GoalRepo *repository.GoalRepository
}

func NewGoalService(goalRepo *repository.GoalRepository) *GoalService {
	return &GoalService{GoalRepo: goalRepo}
}

type GoalRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Type        string `json:"type"`
	TargetValue int    `json:"targetValue" binding:"required,min=1"`
	TargetDate  string `json:"targetDate"` // 2006-01-02
}

type GoalProgressRequest struct {
	CurrentValue *int `json:"currentValue" binding:"required,min=0"`
}

func (s *GoalService) CreateGoal(ctx context.Context, userID uint, req GoalRequest) (*model.Goal, error) {
	goalType := model.GoalType(strings.ToLower(strings.TrimSpace(req.Type)))
	switch goalType {
	case model.GoalLessons, model.GoalXP, model.GoalStreak, model.GoalCustom:
	case "":
		goalType = model.GoalCustom
	default:
		return nil, fmt.Errorf("%w: unknown goal type %q", util.ErrInvalidInput, req.Type)
	}

	goal := &model.Goal{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Type:         goalType,
		TargetValue:  req.TargetValue,
		CurrentValue: 0,
	}
	if req.TargetDate != "" {
		d, err := time.Parse(util.DateFormat, req.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid targetDate: %v", util.ErrInvalidInput, err)
		}
		goal.TargetDate = &d
	}
	goal.Refresh()

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) GetUserGoals(ctx context.Context, userID uint) ([]model.Goal, error) {
	return s.GoalRepo.FindByUserID(ctx, userID)
}

// UpdateGoalProgress 设置当前值，达到目标值即标记完成
func (s *GoalService) UpdateGoalProgress(ctx context.Context, userID uint, goalID string, current int) (*model.Goal, error) {
	if current < 0 {
		return nil, fmt.Errorf("%w: currentValue must not be negative", util.ErrInvalidInput)
	}
	goal, err := s.GoalRepo.FindByIDAndUserID(ctx, goalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	goal.CurrentValue = current
	goal.Refresh()
	if err := s.GoalRepo.UpdateProgress(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID uint, goalID string) error {
	n, err := s.GoalRepo.Delete(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}
