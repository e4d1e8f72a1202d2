package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrLessonNotFound   = errors.New("课程不存在")
	ErrSubjectNotFound  = errors.New("科目不存在")
	ErrNegativeXP       = errors.New("xp total cannot be negative")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAIUnavailable    = errors.New("ai service not configured")
	ErrInvalidInput     = errors.New("invalid input")
)
