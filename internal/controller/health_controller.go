package controller

import (
	"examroom_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// Check godoc
// @Summary 健康检查
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (ctrl *HealthController) Check(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	sqlDB, err := ctrl.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		status["database"] = "down"
	} else {
		status["database"] = "up"
	}

	if ctrl.Redis != nil && ctrl.Redis.Ping(c.Request.Context()).Err() == nil {
		status["redis"] = "up"
	} else {
		status["redis"] = "down"
	}

	util.Success(c, "OK", status)
}
