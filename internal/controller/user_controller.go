package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// Profile godoc
// @Summary 获取个人信息
// @Description 返回当前用户的资料及解析后的套餐
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/profile [get]
func (ctrl *UserController) Profile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	view, err := ctrl.UserService.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", view)
}

// UpdateProfile godoc
// @Summary 更新个人信息
// @Description 姓名与性别必填，头像文件可选
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "姓名"
// @Param gender formData int true "性别 0:男 1:女"
// @Param photo formData file false "头像文件"
// @Success 200 {object} util.Response
// @Router /api/profile [put]
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.UserService.UpdateProfile(claims.UserID, req); err != nil {
		util.FromError(c, err)
		return
	}

	// 头像可选，随资料一起提交
	if file, header, err := c.Request.FormFile("photo"); err == nil {
		defer file.Close()
		if _, err := ctrl.UserService.UploadPhoto(c.Request.Context(), claims.UserID,
			file, header.Size, header.Header.Get("Content-Type")); err != nil {
			util.FromError(c, err)
			return
		}
	}

	util.Success(c, "Profile updated", nil)
}

// UploadPhoto godoc
// @Summary 上传头像
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "头像文件"
// @Success 200 {object} util.Response
// @Router /api/profile/photo [post]
func (ctrl *UserController) UploadPhoto(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		util.BadRequest(c, "photo file is required")
		return
	}
	defer file.Close()

	url, err := ctrl.UserService.UploadPhoto(c.Request.Context(), claims.UserID,
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Photo uploaded", gin.H{"url": url})
}
