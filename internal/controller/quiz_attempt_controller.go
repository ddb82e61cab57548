package controller

import (
	"edu_quiz_backend/internal/service"
	"edu_quiz_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuizAttemptController struct {
	Service *service.QuizAttemptService
}

func NewQuizAttemptController(svc *service.QuizAttemptService) *QuizAttemptController {
	return &QuizAttemptController{Service: svc}
}

// @Summary 开始或续答测验
// @Tags 测验作答模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "已达作答次数上限"
// @Router /api/student/quizzes/{id}/attempts [post]
func (c *QuizAttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Service.StartAttempt(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary 获取当前作答
// @Tags 测验作答模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/student/quizzes/{id}/attempts/current [get]
func (c *QuizAttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Service.GetAttempt(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 获取作答历史
// @Tags 测验作答模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/student/quizzes/{id}/attempts [get]
func (c *QuizAttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Service.ListAttempts(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// @Summary 学生测验详情
// @Tags 测验作答模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/student/quizzes/{id} [get]
func (c *QuizAttemptController) StudentQuizView(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.StudentQuizView(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type SaveProgressRequest struct {
	Answers service.IncomingAnswers `json:"answers" binding:"required"`
}

// @Summary 保存作答进度
// @Tags 测验作答模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Param body body SaveProgressRequest true "部分答案"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "作答已提交"
// @Router /api/student/attempts/{id}/answers [patch]
func (c *QuizAttemptController) SaveProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.SaveProgress(ctx.Request.Context(), ctx.Param("id"), user.UserID, req.Answers)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

type SubmitAttemptRequest struct {
	Answers              service.IncomingAnswers `json:"answers"`
	ClientElapsedSeconds *int                    `json:"clientElapsedSeconds"`
}

// @Summary 提交测验作答
// @Tags 测验作答模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作答ID"
// @Param body body SubmitAttemptRequest true "最终答案"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "作答已提交"
// @Router /api/student/attempts/{id}/submit [post]
func (c *QuizAttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitAttempt(ctx.Request.Context(), ctx.Param("id"), user.UserID, req.Answers, req.ClientElapsedSeconds)
	if err != nil {
		mapAttemptError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// mapAttemptError 将引擎的哨兵错误映射到 HTTP 状态码
func mapAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound), errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuizNotPublished):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAttemptCompleted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrMaxAttemptsReached):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
