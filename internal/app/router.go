package app

import (
	"examroom_backend/internal/middleware"
	"examroom_backend/pkg/monitoring"
	"examroom_backend/pkg/security"
	"examroom_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "examroom_backend/docs"
)

func (a *App) setupRouter() *gin.Engine {
	gin.SetMode(a.Config.Server.Mode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(security.CORS(a.Config.CORS.AllowedOrigins))
	r.Use(security.Secure())
	r.Use(monitoring.MetricsMiddleware())
	if a.Config.Tracing.Enabled {
		r.Use(tracing.GinMiddleware())
	}
	if a.Config.RateLimit.MaxRequests > 0 {
		r.Use(security.RateLimiter(
			a.Config.RateLimit.MaxRequests,
			time.Duration(a.Config.RateLimit.WindowMinutes)*time.Minute,
		))
	}

	r.GET("/health", a.healthCtrl.Check)
	r.GET("/api/health", a.healthCtrl.Check)
	r.GET("/metrics", monitoring.PrometheusHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if a.Config.Storage.Type == "local" || a.Config.Storage.Type == "" {
		r.Static("/uploads", a.Config.Storage.LocalPath)
	}

	api := r.Group("/api")
	{
		api.POST("/register", a.authCtrl.Register)
		api.POST("/login", a.authCtrl.Login)
		api.GET("/packages/price-list", a.packageCtrl.PriceList)
	}

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(a.Config))
	{
		auth.GET("/profile", a.userCtrl.Profile)
		auth.PUT("/profile", a.userCtrl.UpdateProfile)
		auth.POST("/profile/photo", a.userCtrl.UploadPhoto)

		exams := auth.Group("/exams")
		{
			exams.GET("", a.examCtrl.ListActive)
			exams.POST("", a.examCtrl.Create)
			exams.GET("/upcoming", a.examCtrl.ListUpcoming)
			exams.GET("/ongoing", a.examCtrl.ListOngoing)
			exams.GET("/finished", a.examCtrl.ListFinished)

			exams.GET("/:examId", a.examCtrl.Get)
			exams.PUT("/:examId", a.examCtrl.Update)
			exams.DELETE("/:examId", a.examCtrl.Delete)
			exams.POST("/:examId/join", a.examCtrl.Join)

			exams.GET("/:examId/participants", a.participantCtrl.List)
			exams.POST("/:examId/participants", a.participantCtrl.Invite)
			exams.PUT("/:examId/participants/:userId", a.participantCtrl.Update)
			exams.DELETE("/:examId/participants/:userId", a.participantCtrl.Remove)

			exams.GET("/:examId/questions", a.questionCtrl.List)
			exams.POST("/:examId/questions", a.questionCtrl.Add)
			exams.PUT("/:examId/questions/order", a.questionCtrl.Reorder)
			exams.PUT("/:examId/questions/:questionId", a.questionCtrl.Update)
			exams.DELETE("/:examId/questions/:questionId", a.questionCtrl.Delete)
			exams.POST("/:examId/questions/:questionId/image", a.questionCtrl.UploadImage)

			exams.POST("/:examId/answers", a.answerCtrl.Submit)
			exams.GET("/:examId/answers", a.answerCtrl.Get)
			exams.GET("/:examId/result/student", a.answerCtrl.StudentResult)
			exams.GET("/:examId/result/teacher", a.answerCtrl.TeacherResult)
		}

		admin := auth.Group("/admin")
		{
			admin.PUT("/users/:userId/package", a.packageCtrl.Grant)
		}
	}

	return r
}
