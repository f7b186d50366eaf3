package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService    *service.AuthService
	PackageService *service.PackageService
}

func NewAuthController(authService *service.AuthService, packageService *service.PackageService) *AuthController {
	return &AuthController{AuthService: authService, PackageService: packageService}
}

// Register godoc
// @Summary 用户注册
// @Description 注册新用户，默认开通 trial 套餐
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "注册信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	trial := ctrl.PackageService.ResolveByID(c.Request.Context(), "trial")
	user, err := ctrl.AuthService.Register(req, trial.FreeQuota)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Created(c, "Registration successful", user)
}

// Login godoc
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "登录凭证"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	resp, err := ctrl.AuthService.Login(req)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Login successful", resp)
}
