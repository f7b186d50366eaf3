package controller

import (
	"encoding/json"
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// List godoc
// @Summary 题目列表
// @Description 按序号升序返回，学生视角不含正确答案
// @Tags question
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/questions [get]
func (ctrl *QuestionController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	views, err := ctrl.QuestionService.List(c.Request.Context(), c.Param("examId"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}

// questionForm multipart 形态的题目提交，options 为序列化后的 JSON 对象
type questionForm struct {
	Description   string `form:"description" binding:"required"`
	Duration      int    `form:"duration" binding:"min=0"`
	Options       string `form:"options" binding:"required"`
	CorrectOption string `form:"correctOption" binding:"required"`
}

func (f *questionForm) toRequest() (service.QuestionRequest, error) {
	var opts map[string]string
	if err := json.Unmarshal([]byte(f.Options), &opts); err != nil {
		return service.QuestionRequest{}, err
	}
	return service.QuestionRequest{
		Description:   f.Description,
		Duration:      f.Duration,
		Options:       opts,
		CorrectOption: f.CorrectOption,
	}, nil
}

// Add godoc
// @Summary 新增题目
// @Description 序号自动取当前数量加一，受套餐题目上限约束，配图可选
// @Tags question
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param description formData string true "题干"
// @Param duration formData int false "答题时长（秒）"
// @Param options formData string true "选项 JSON 对象"
// @Param correctOption formData string true "正确选项标签"
// @Param image formData file false "配图"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/exams/{examId}/questions [post]
func (ctrl *QuestionController) Add(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var form questionForm
	if err := c.ShouldBind(&form); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	req, err := form.toRequest()
	if err != nil {
		util.BadRequest(c, "options must be a JSON object")
		return
	}

	view, err := ctrl.QuestionService.Add(c.Request.Context(), c.Param("examId"), claims.UserID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	// 配图可选，随题目一起提交
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		url, err := ctrl.QuestionService.UploadImage(c.Request.Context(), c.Param("examId"), view.ID,
			claims.UserID, file, header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			util.FromError(c, err)
			return
		}
		view.Image = url
	}

	util.Created(c, "Question added", view)
}

// Update godoc
// @Summary 修改题目
// @Tags question
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param questionId path string true "题目ID"
// @Param request body service.QuestionRequest true "题目内容"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/questions/{questionId} [put]
func (ctrl *QuestionController) Update(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	view, err := ctrl.QuestionService.Update(c.Request.Context(), c.Param("examId"), c.Param("questionId"), claims.UserID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Question updated", view)
}

type reorderRequest struct {
	Orders map[string]int `json:"orders" binding:"required"`
}

// Reorder godoc
// @Summary 批量调整题目顺序
// @Description 按提交的映射原样落库
// @Tags question
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/questions/order [put]
func (ctrl *QuestionController) Reorder(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.QuestionService.Reorder(c.Param("examId"), claims.UserID, req.Orders); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Questions reordered", nil)
}

// Delete godoc
// @Summary 删除题目
// @Description 删除后回补后续序号
// @Tags question
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/questions/{questionId} [delete]
func (ctrl *QuestionController) Delete(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.QuestionService.Delete(c.Request.Context(), c.Param("examId"), c.Param("questionId"), claims.UserID); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Question deleted", nil)
}

// UploadImage godoc
// @Summary 上传题目配图
// @Tags question
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param questionId path string true "题目ID"
// @Param image formData file true "图片文件"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/questions/{questionId}/image [post]
func (ctrl *QuestionController) UploadImage(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		util.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	url, err := ctrl.QuestionService.UploadImage(c.Request.Context(), c.Param("examId"), c.Param("questionId"),
		claims.UserID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Image uploaded", gin.H{"url": url})
}
