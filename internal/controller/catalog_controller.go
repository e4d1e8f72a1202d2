package controller

import (
	"codepath_backend/internal/service"
	"codepath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 科目列表
// @Description 所有科目及其主题数、课程数
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.SubjectSummary}
// @Router /subjects [get]
func (c *CatalogController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.CatalogService.ListSubjects(ctx.Request.Context())
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, subjects)
}

// @Summary 科目详情
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "科目标识"
// @Success 200 {object} util.Response{data=model.Subject}
// @Failure 404 {object} util.Response
// @Router /subjects/{slug} [get]
func (c *CatalogController) GetSubject(ctx *gin.Context) {
	subject, err := c.CatalogService.GetSubject(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, subject)
}

// @Summary 课程详情
// @Description 课程内容、经验值以及当前用户是否已完成
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.LessonDetail}
// @Failure 404 {object} util.Response
// @Router /lessons/{id} [get]
func (c *CatalogController) GetLesson(ctx *gin.Context) {
	lessonID := util.MustParseUint(ctx.Param("id"))
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	lesson, err := c.CatalogService.GetLesson(ctx.Request.Context(), util.GetUserID(ctx), lessonID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}
