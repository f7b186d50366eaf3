package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

// Submit godoc
// @Summary 提交作答
// @Description 增量合并，同一题目后提交覆盖先提交，考试结束后拒绝
// @Tags answer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param request body service.SubmitAnswerRequest true "作答内容"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/exams/{examId}/answers [post]
func (ctrl *AnswerController) Submit(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.AnswerService.Submit(c.Param("examId"), claims.UserID, req); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Answer saved", nil)
}

// Get godoc
// @Summary 查看作答
// @Description 默认返回自己的作答，owner 和 admin 可用 uid 查看指定参与者
// @Tags answer
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param uid query int false "参与者用户ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/answers [get]
func (ctrl *AnswerController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	targetID := claims.UserID
	if uid := c.Query("uid"); uid != "" {
		parsed, err := strconv.ParseUint(uid, 10, 64)
		if err != nil {
			util.BadRequest(c, "invalid uid")
			return
		}
		targetID = uint(parsed)
	}

	view, err := ctrl.AnswerService.Get(c.Param("examId"), claims.UserID, targetID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", view)
}

// StudentResult godoc
// @Summary 学生提交概览
// @Description 考试结束后才可查看
// @Tags answer
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/result/student [get]
func (ctrl *AnswerController) StudentResult(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	result, err := ctrl.AnswerService.StudentResultView(c.Param("examId"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", result)
}

// TeacherResult godoc
// @Summary 全员提交情况
// @Description owner 和 admin 随时可看
// @Tags answer
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/result/teacher [get]
func (ctrl *AnswerController) TeacherResult(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	rows, err := ctrl.AnswerService.TeacherResultView(c.Param("examId"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", rows)
}
