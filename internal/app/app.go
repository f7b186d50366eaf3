package app

import (
	"context"
	"examroom_backend/internal/config"
	"examroom_backend/internal/controller"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/service"
	"examroom_backend/pkg/configwatcher"
	"examroom_backend/pkg/database"
	"examroom_backend/pkg/logger"
	"examroom_backend/pkg/monitoring"
	"examroom_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine

	userRepo        *repository.UserRepository
	examRepo        *repository.ExamRepository
	participantRepo *repository.ParticipantRepository
	questionRepo    *repository.QuestionRepository
	answerRepo      *repository.AnswerRepository
	packageRepo     *repository.PackageRepository

	authSvc        *service.AuthService
	userSvc        *service.UserService
	examSvc        *service.ExamService
	participantSvc *service.ParticipantService
	questionSvc    *service.QuestionService
	answerSvc      *service.AnswerService
	packageSvc     *service.PackageService
	storageSvc     *service.StorageService

	authCtrl        *controller.AuthController
	userCtrl        *controller.UserController
	examCtrl        *controller.ExamController
	participantCtrl *controller.ParticipantController
	questionCtrl    *controller.QuestionController
	answerCtrl      *controller.AnswerController
	packageCtrl     *controller.PackageController
	healthCtrl      *controller.HealthController
}

func New(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Redis 不可用时降级运行，套餐解析直接走数据库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	monitoring.Init()

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("examroom-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Warn("Failed to init tracer", zap.Error(err))
		}
	}

	a := &App{Config: cfg, DB: db, Redis: rdb}
	a.initRepositories()
	a.initServices()
	a.initControllers()
	a.Router = a.setupRouter()

	return a, nil
}

func (a *App) initRepositories() {
	a.userRepo = repository.NewUserRepository(a.DB)
	a.examRepo = repository.NewExamRepository(a.DB)
	a.participantRepo = repository.NewParticipantRepository(a.DB)
	a.questionRepo = repository.NewQuestionRepository(a.DB)
	a.answerRepo = repository.NewAnswerRepository(a.DB)
	a.packageRepo = repository.NewPackageRepository(a.DB)
}

func (a *App) initServices() {
	a.storageSvc = service.NewStorageService(a.Config)
	a.packageSvc = service.NewPackageService(a.packageRepo, a.userRepo, a.Redis)
	a.authSvc = service.NewAuthService(a.userRepo, a.Config)
	a.userSvc = service.NewUserService(a.userRepo, a.packageSvc, a.storageSvc)
	a.participantSvc = service.NewParticipantService(
		a.examRepo, a.participantRepo, a.userRepo, a.answerRepo,
		a.packageSvc, a.DB, a.Config.Exam.JoinCloseMargin(),
	)
	a.examSvc = service.NewExamService(
		a.examRepo, a.participantRepo, a.questionRepo, a.answerRepo,
		a.participantSvc, a.packageSvc, a.DB, a.Config.Exam.SeedQuestionDescription,
	)
	a.questionSvc = service.NewQuestionService(
		a.questionRepo, a.examRepo, a.participantSvc, a.packageSvc, a.storageSvc, a.DB,
	)
	a.answerSvc = service.NewAnswerService(
		a.answerRepo, a.questionRepo, a.participantRepo, a.userRepo, a.examRepo,
		a.participantSvc, a.DB,
	)
}

func (a *App) initControllers() {
	a.authCtrl = controller.NewAuthController(a.authSvc, a.packageSvc)
	a.userCtrl = controller.NewUserController(a.userSvc)
	a.examCtrl = controller.NewExamController(a.examSvc, a.participantSvc)
	a.participantCtrl = controller.NewParticipantController(a.participantSvc, a.storageSvc)
	a.questionCtrl = controller.NewQuestionController(a.questionSvc)
	a.answerCtrl = controller.NewAnswerController(a.answerSvc)
	a.packageCtrl = controller.NewPackageController(a.packageSvc)
	a.healthCtrl = controller.NewHealthController(a.DB, a.Redis)
}

// Run 启动服务并处理优雅退出，同时监听配置热更新
func (a *App) Run(configDir string) error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go configwatcher.WatchConfig(configDir+"/config.yaml", func(cfg *config.Config) {
		logger.Log.Info("Config reloaded",
			zap.Int("joinCloseMarginMinutes", cfg.Exam.JoinCloseMarginMinutes))
		a.Config.Exam = cfg.Exam
		a.Config.RateLimit = cfg.RateLimit
		a.participantSvc.JoinCloseMargin = cfg.Exam.JoinCloseMargin()
	})

	go func() {
		logger.Log.Info("Server starting", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Warn("Failed to close redis", zap.Error(err))
		}
	}

	logger.Log.Info("Server exited")
	return nil
}
