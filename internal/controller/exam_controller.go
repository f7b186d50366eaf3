package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService        *service.ExamService
	ParticipantService *service.ParticipantService
}

func NewExamController(examService *service.ExamService, participantService *service.ParticipantService) *ExamController {
	return &ExamController{ExamService: examService, ParticipantService: participantService}
}

// Create godoc
// @Summary 创建考试
// @Description 扣减创建额度并自动生成示例题目
// @Tags exam
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateExamRequest true "考试信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/exams [post]
func (ctrl *ExamController) Create(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	exam, err := ctrl.ExamService.Create(claims.UserID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Created(c, "Exam created", exam)
}

// Get godoc
// @Summary 查看考试详情
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{examId} [get]
func (ctrl *ExamController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	view, err := ctrl.ExamService.Get(c.Param("examId"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", view)
}

// Update godoc
// @Summary 更新考试
// @Tags exam
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param request body service.UpdateExamRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId} [put]
func (ctrl *ExamController) Update(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	exam, err := ctrl.ExamService.Update(c.Param("examId"), claims.UserID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Exam updated", exam)
}

// Delete godoc
// @Summary 删除考试
// @Description 仅创建者可删除，题目与作答一并清理
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId} [delete]
func (ctrl *ExamController) Delete(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.ExamService.Delete(c.Param("examId"), claims.UserID); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Exam deleted", nil)
}

// Join godoc
// @Summary 加入考试
// @Description 临近结束、黑名单、重复加入、容量超限均会被拒绝
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/exams/{examId}/join [post]
func (ctrl *ExamController) Join(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.ParticipantService.Join(c.Request.Context(), c.Param("examId"), claims.UserID); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Joined exam", nil)
}

// ListUpcoming godoc
// @Summary 一周内即将开始的考试
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exams/upcoming [get]
func (ctrl *ExamController) ListUpcoming(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	views, err := ctrl.ExamService.ListUpcoming(c.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}

// ListOngoing godoc
// @Summary 进行中的考试
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response
// @Router /api/exams/ongoing [get]
func (ctrl *ExamController) ListOngoing(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	views, err := ctrl.ExamService.ListOngoing(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}

// ListFinished godoc
// @Summary 已结束的考试
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exams/finished [get]
func (ctrl *ExamController) ListFinished(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	views, err := ctrl.ExamService.ListFinished(c.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}

// ListActive godoc
// @Summary 我参与且尚未结束的考试
// @Tags exam
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exams [get]
func (ctrl *ExamController) ListActive(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	views, err := ctrl.ExamService.ListActive(c.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}
