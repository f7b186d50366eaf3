package service

import (
	"context"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamService struct {
	ExamRepo            *repository.ExamRepository
	ParticipantRepo     *repository.ParticipantRepository
	QuestionRepo        *repository.QuestionRepository
	AnswerRepo          *repository.AnswerRepository
	ParticipantSvc      *ParticipantService
	PackageSvc          *PackageService
	DB                  *gorm.DB
	SeedQuestionText    string
	OngoingDefaultLimit int
}

func NewExamService(
	examRepo *repository.ExamRepository,
	participantRepo *repository.ParticipantRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	participantSvc *ParticipantService,
	packageSvc *PackageService,
	db *gorm.DB,
	seedQuestionText string,
) *ExamService {
	return &ExamService{
		ExamRepo:            examRepo,
		ParticipantRepo:     participantRepo,
		QuestionRepo:        questionRepo,
		AnswerRepo:          answerRepo,
		ParticipantSvc:      participantSvc,
		PackageSvc:          packageSvc,
		DB:                  db,
		SeedQuestionText:    seedQuestionText,
		OngoingDefaultLimit: 20,
	}
}

type CreateExamRequest struct {
	Title    string    `json:"title" binding:"required,min=1,max=255"`
	SubTitle string    `json:"subTitle" binding:"max=255"`
	StartAt  time.Time `json:"startAt" binding:"required"`
	FinishAt time.Time `json:"finishAt" binding:"required"`
}

type UpdateExamRequest struct {
	Title    *string    `json:"title"`
	SubTitle *string    `json:"subTitle"`
	StartAt  *time.Time `json:"startAt"`
	FinishAt *time.Time `json:"finishAt"`
}

// ExamView 考试详情，附带按当前时间推导的状态和调用者视角的标记
type ExamView struct {
	model.Exam
	Status     model.ExamStatus `json:"status"`
	IsOwner    bool             `json:"isOwner"`
	Role       ExamRole         `json:"role,omitempty"`
	IsAnswered bool             `json:"isAnswered"`
}

// Create 创建考试。额度扣减、考试写入、创建者参与记录、示例题目
// 在同一事务内完成，任一步失败则整体回滚
func (s *ExamService) Create(userID uint, req CreateExamRequest) (*model.Exam, error) {
	if !req.StartAt.Before(req.FinishAt) {
		return nil, util.ErrInvalidInput
	}

	var exam model.Exam
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		if user.Quota <= 0 {
			return util.ErrQuotaExceeded
		}
		if err := tx.Model(&user).Update("quota", user.Quota-1).Error; err != nil {
			return err
		}

		exam = model.Exam{
			Title:     req.Title,
			SubTitle:  req.SubTitle,
			StartAt:   req.StartAt,
			FinishAt:  req.FinishAt,
			CreatedBy: userID,
		}
		if err := tx.Create(&exam).Error; err != nil {
			return err
		}

		if err := tx.Create(&model.Participant{
			ExamID:     exam.ID,
			UserID:     userID,
			Role:       model.RoleOwner,
			JoinAt:     time.Now(),
			JoinMethod: model.JoinByCreate,
		}).Error; err != nil {
			return err
		}

		// 示例题目不计入套餐题目上限的创建门槛，只占第一个序号
		seed := model.Question{
			ExamID:        exam.ID,
			Description:   s.SeedQuestionText,
			Duration:      60,
			Options:       []byte(`{"a":"Correct answer","b":"Wrong answer","c":"Wrong answer","d":"Wrong answer"}`),
			CorrectOption: "a",
			Order:         1,
		}
		return tx.Create(&seed).Error
	})
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// Get 查看考试，参与者与创建者可见
func (s *ExamService) Get(examID string, userID uint) (*ExamView, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	role, p, err := s.ParticipantSvc.ResolveRole(examID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil && exam.CreatedBy != userID {
		return nil, util.ErrNotParticipant
	}
	if p != nil && p.IsBlocked {
		return nil, util.ErrUserBlocked
	}

	view := &ExamView{
		Exam:    *exam,
		Status:  exam.StatusAt(time.Now()),
		IsOwner: exam.CreatedBy == userID,
		Role:    role,
	}
	if ok, err := s.AnswerRepo.Exists(examID, userID); err == nil {
		view.IsAnswered = ok
	}
	return view, nil
}

// Update 更新考试元数据，owner 和 admin 可操作，创建者字段不可变
func (s *ExamService) Update(examID string, userID uint, req UpdateExamRequest) (*model.Exam, error) {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return nil, err
	}

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.SubTitle != nil {
		exam.SubTitle = *req.SubTitle
	}
	if req.StartAt != nil {
		exam.StartAt = *req.StartAt
	}
	if req.FinishAt != nil {
		exam.FinishAt = *req.FinishAt
	}
	if !exam.StartAt.Before(exam.FinishAt) {
		return nil, util.ErrInvalidInput
	}

	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Delete 仅创建者可删除，题目、作答、参与记录一并清理
func (s *ExamService) Delete(examID string, userID uint) error {
	role, p, err := s.ParticipantSvc.ResolveRole(examID, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return util.ErrNotParticipant
	}
	if !role.CanDelete() {
		return util.ErrPermissionDenied
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", examID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.Participant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", examID).Delete(&model.Exam{}).Error
	})
}

func (s *ExamService) decorate(ctx context.Context, exams []model.Exam, userID uint, now time.Time) []ExamView {
	views := make([]ExamView, 0, len(exams))
	for _, e := range exams {
		view := ExamView{
			Exam:    e,
			Status:  e.StatusAt(now),
			IsOwner: e.CreatedBy == userID,
		}
		if ok, err := s.AnswerRepo.Exists(e.ID, userID); err == nil {
			view.IsAnswered = ok
		}
		views = append(views, view)
	}
	return views
}

func (s *ExamService) ListUpcoming(ctx context.Context, userID uint) ([]ExamView, error) {
	now := time.Now()
	exams, err := s.ExamRepo.ListUpcoming(userID, now)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, exams, userID, now), nil
}

func (s *ExamService) ListOngoing(ctx context.Context, userID uint, limit int) ([]ExamView, error) {
	if limit <= 0 {
		limit = s.OngoingDefaultLimit
	}
	now := time.Now()
	exams, err := s.ExamRepo.ListOngoing(userID, now, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, exams, userID, now), nil
}

func (s *ExamService) ListFinished(ctx context.Context, userID uint) ([]ExamView, error) {
	now := time.Now()
	exams, err := s.ExamRepo.ListFinished(userID, now)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, exams, userID, now), nil
}

func (s *ExamService) ListActive(ctx context.Context, userID uint) ([]ExamView, error) {
	now := time.Now()
	exams, err := s.ExamRepo.ListActive(userID, now)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, exams, userID, now), nil
}
