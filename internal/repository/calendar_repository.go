package repository

import (
	"codepath_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type CalendarRepository struct {
	DB *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{DB: db}
}

func (r *CalendarRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

// FindInRange [from, to) 区间内的日程，按日期升序
func (r *CalendarRepository) FindInRange(ctx context.Context, userID uint, from, to time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

func (r *CalendarRepository) FindByIDAndUserID(ctx context.Context, id string, userID uint) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ToggleCompleted 在数据库中原子取反完成标记
func (r *CalendarRepository) ToggleCompleted(ctx context.Context, event *model.CalendarEvent) error {
	err := r.DB.WithContext(ctx).Model(&model.CalendarEvent{}).
		Where("id = ?", event.ID).
		Update("completed", gorm.Expr("NOT completed")).Error
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).First(event, "id = ?", event.ID).Error
}
