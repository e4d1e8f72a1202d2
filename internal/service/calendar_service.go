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

type CalendarService struct {
	CalendarRepo *repository.CalendarRepository
}

func NewCalendarService(calendarRepo *repository.CalendarRepository) *CalendarService {
	return &CalendarService{CalendarRepo: calendarRepo}
}

type CalendarEventRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"` // 2006-01-02
	StartTime   string `json:"startTime"`               // 15:04
	EndTime     string `json:"endTime"`
	Type        string `json:"type"`
	SubjectID   *uint  `json:"subjectId"`
}

func parseClock(day time.Time, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return nil, err
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return &at, nil
}

func (s *CalendarService) CreateEvent(ctx context.Context, userID uint, req CalendarEventRequest) (*model.CalendarEvent, error) {
	day, err := time.Parse(util.DateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date: %v", util.ErrInvalidInput, err)
	}
	start, err := parseClock(day, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", util.ErrInvalidInput, err)
	}
	end, err := parseClock(day, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endTime: %v", util.ErrInvalidInput, err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: endTime is before startTime", util.ErrInvalidInput)
	}

	eventType := strings.TrimSpace(req.Type)
	if eventType == "" {
		eventType = model.DefaultEventType
	}

	event := &model.CalendarEvent{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        day,
		StartTime:   start,
		EndTime:     end,
		Type:        eventType,
		SubjectID:   req.SubjectID,
	}
	if err := s.CalendarRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvents 某年某月（1-12）的日程
func (s *CalendarService) GetEvents(ctx context.Context, userID uint, month, year int) ([]model.CalendarEvent, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", util.ErrInvalidInput)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.CalendarRepo.FindInRange(ctx, userID, from, to)
}

func (s *CalendarService) ToggleEvent(ctx context.Context, userID uint, eventID string) (*model.CalendarEvent, error) {
	event, err := s.CalendarRepo.FindByIDAndUserID(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEventNotFound
		}
		return nil, err
	}
	if err := s.CalendarRepo.ToggleCompleted(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}
