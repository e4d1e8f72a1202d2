package controller

import (
	"codepath_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleError 将服务层的哨兵错误映射为 HTTP 状态码，其余记录日志返回 500
func handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrSubjectNotFound),
		errors.Is(err, util.ErrGoalNotFound),
		errors.Is(err, util.ErrEventNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidInput), errors.Is(err, util.ErrNegativeXP):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidSignature):
		util.Error(ctx, http.StatusUnauthorized, util.ErrInvalidSignature.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAIUnavailable):
		util.ServiceUnavailable(ctx, util.ErrAIUnavailable.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUserID 已认证请求的本地用户 ID，缺失时直接返回 401
func currentUserID(ctx *gin.Context) (uint, bool) {
	userID := util.GetUserID(ctx)
	if userID == 0 {
		util.Unauthorized(ctx)
		return 0, false
	}
	return userID, true
}
