package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type CalendarController struct {
	CalendarService *service.CalendarService
}

func NewCalendarController(calendarService *service.CalendarService) *CalendarController {
	return &CalendarController{CalendarService: calendarService}
}

// @Summary 获取日程
// @Description 按月获取学习日程，缺省为当前月
// @Tags 学习日程
// @Produce json
// @Security ApiKeyAuth
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} util.Response{data=[]model.CalendarEvent}
// @Router /calendar [get]
func (c *CalendarController) GetEvents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	now := time.Now().UTC()
	month := util.QueryInt(ctx.Query("month"), int(now.Month()), 1, 12)
	year := util.QueryInt(ctx.Query("year"), now.Year(), 1970, 9999)

	events, err := c.CalendarService.GetEvents(ctx.Request.Context(), userID, month, year)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, events)
}

// @Summary 创建日程
// @Tags 学习日程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param event body service.CalendarEventRequest true "日程信息"
// @Success 201 {object} util.Response{data=model.CalendarEvent}
// @Failure 400 {object} util.Response
// @Router /calendar [post]
func (c *CalendarController) CreateEvent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CalendarEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	event, err := c.CalendarService.CreateEvent(ctx.Request.Context(), userID, req)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Created(ctx, event)
}

// @Summary 切换日程完成状态
// @Tags 学习日程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "日程ID"
// @Success 200 {object} util.Response{data=model.CalendarEvent}
// @Failure 404 {object} util.Response
// @Router /calendar/{id}/toggle [patch]
func (c *CalendarController) ToggleEvent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	event, err := c.CalendarService.ToggleEvent(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, event)
}
