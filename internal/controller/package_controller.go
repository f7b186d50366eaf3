package controller

import (
	"examroom_backend/internal/service"
	"examroom_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PackageController struct {
	PackageService *service.PackageService
}

func NewPackageController(packageService *service.PackageService) *PackageController {
	return &PackageController{PackageService: packageService}
}

// PriceList godoc
// @Summary 套餐价目表
// @Tags package
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/packages/price-list [get]
func (ctrl *PackageController) PriceList(c *gin.Context) {
	infos, err := ctrl.PackageService.PriceList()
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "OK", infos)
}

// Grant godoc
// @Summary 给用户发放套餐和额度
// @Tags package
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Param request body service.GrantRequest true "套餐与额度"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{userId}/package [put]
func (ctrl *PackageController) Grant(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(c, "invalid user id")
		return
	}

	var req service.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.PackageService.Grant(uint(userID), req); err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, "Package granted", nil)
}
