package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ParticipantController struct {
	ParticipantService *service.ParticipantService
	StorageService     *service.StorageService
}

func NewParticipantController(participantService *service.ParticipantService, storageService *service.StorageService) *ParticipantController {
	return &ParticipantController{ParticipantService: participantService, StorageService: storageService}
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

// List godoc
// @Summary 参与者列表
// @Description blocked=true 时返回黑名单
// @Tags participant
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param blocked query bool false "只看黑名单"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/participants [get]
func (ctrl *ParticipantController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	blocked := c.Query("blocked") == "true"
	views, err := ctrl.ParticipantService.List(c.Request.Context(), c.Param("examId"), claims.UserID, blocked, ctrl.StorageService)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", views)
}

// Invite godoc
// @Summary 邀请参与者
// @Tags participant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param request body service.InviteRequest true "被邀请人邮箱"
// @Success 201 {object} util.Response
// @Router /api/exams/{examId}/participants [post]
func (ctrl *ParticipantController) Invite(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	p, err := ctrl.ParticipantService.Invite(c.Request.Context(), c.Param("examId"), claims.UserID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Created(c, "Participant invited", p)
}

// Update godoc
// @Summary 调整参与者
// @Description 别名、角色、拉黑或解除，创建者不可变更
// @Tags participant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param userId path int true "参与者用户ID"
// @Param request body service.UpdateParticipantRequest true "变更字段"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/participants/{userId} [put]
func (ctrl *ParticipantController) Update(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req service.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	p, err := ctrl.ParticipantService.Update(c.Param("examId"), claims.UserID, targetID, req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Participant updated", p)
}

// Remove godoc
// @Summary 移除参与者
// @Tags participant
// @Produce json
// @Security BearerAuth
// @Param examId path string true "考试ID"
// @Param userId path int true "参与者用户ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{examId}/participants/{userId} [delete]
func (ctrl *ParticipantController) Remove(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := ctrl.ParticipantService.Remove(c.Param("examId"), claims.UserID, targetID); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Participant removed", nil)
}
