package service

import (
	"context"
	"encoding/json"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"io"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionService struct {
	QuestionRepo   *repository.QuestionRepository
	ExamRepo       *repository.ExamRepository
	ParticipantSvc *ParticipantService
	PackageSvc     *PackageService
	Storage        *StorageService
	DB             *gorm.DB
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	examRepo *repository.ExamRepository,
	participantSvc *ParticipantService,
	packageSvc *PackageService,
	storage *StorageService,
	db *gorm.DB,
) *QuestionService {
	return &QuestionService{
		QuestionRepo:   questionRepo,
		ExamRepo:       examRepo,
		ParticipantSvc: participantSvc,
		PackageSvc:     packageSvc,
		Storage:        storage,
		DB:             db,
	}
}

type QuestionRequest struct {
	Description   string            `json:"description" binding:"required"`
	Duration      int               `json:"duration" binding:"min=0"`
	Options       map[string]string `json:"options" binding:"required"`
	CorrectOption string            `json:"correctOption" binding:"required"`
}

func (r *QuestionRequest) validate() error {
	if _, ok := r.Options[r.CorrectOption]; !ok {
		return util.ErrInvalidInput
	}
	return nil
}

// QuestionView 题目投影。学生视角不含正确答案
type QuestionView struct {
	ID          string            `json:"id"`
	ExamID      string            `json:"examId"`
	Description string            `json:"description"`
	Duration    int               `json:"duration"`
	Options     map[string]string `json:"options"`
	Order       int               `json:"order"`
	Image       string            `json:"image,omitempty"`

	CorrectOption string `json:"correctOption,omitempty"`
}

func (s *QuestionService) view(ctx context.Context, q *model.Question, withAnswer bool) QuestionView {
	opts, _ := q.OptionMap()
	view := QuestionView{
		ID:          q.ID,
		ExamID:      q.ExamID,
		Description: q.Description,
		Duration:    q.Duration,
		Options:     opts,
		Order:       q.Order,
		Image:       s.Storage.URLIfExists(ctx, QuestionImagePath(q.ID)),
	}
	if withAnswer {
		view.CorrectOption = q.CorrectOption
	}
	return view
}

// Add 新增题目，序号取当前数量加一。数量检查和写入在同一事务内，
// 考试行加锁保证并发下序号连续且不超套餐上限
func (s *QuestionService) Add(ctx context.Context, examID string, userID uint, req QuestionRequest) (*QuestionView, error) {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	optData, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}

	var created model.Question
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var exam model.Exam
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", examID).First(&exam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrExamNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Question{}).
			Where("exam_id = ?", examID).
			Count(&count).Error; err != nil {
			return err
		}

		pkg := s.PackageSvc.ResolveForUser(ctx, exam.CreatedBy)
		if count >= int64(pkg.MaxQuestion) {
			return util.ErrQuestionLimit
		}

		created = model.Question{
			ExamID:        examID,
			Description:   req.Description,
			Duration:      req.Duration,
			Options:       optData,
			CorrectOption: req.CorrectOption,
			Order:         int(count) + 1,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	view := s.view(ctx, &created, true)
	return &view, nil
}

// Update 修改题目内容，不改变序号
func (s *QuestionService) Update(ctx context.Context, examID, questionID string, userID uint, req QuestionRequest) (*QuestionView, error) {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil || q.ExamID != examID {
		return nil, util.ErrQuestionNotFound
	}

	optData, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}
	q.Description = req.Description
	q.Duration = req.Duration
	q.Options = optData
	q.CorrectOption = req.CorrectOption

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	view := s.view(ctx, q, true)
	return &view, nil
}

// Reorder 按调用方给出的映射批量改写序号，映射内容原样落库
func (s *QuestionService) Reorder(examID string, userID uint, orders map[string]int) error {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for id, order := range orders {
			result := tx.Model(&model.Question{}).
				Where("id = ? AND exam_id = ?", id, examID).
				Update("order", order)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return util.ErrQuestionNotFound
			}
		}
		return nil
	})
}

// Delete 删除题目并回补后续序号，序号保持从1开始连续。
// 与 Add 一样在事务内对考试行加锁，序号在锁内重读，并发删改不产生空洞
func (s *QuestionService) Delete(ctx context.Context, examID, questionID string, userID uint) error {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var exam model.Exam
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", examID).First(&exam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrExamNotFound
			}
			return err
		}

		var q model.Question
		if err := tx.Where("id = ? AND exam_id = ?", questionID, examID).
			First(&q).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuestionNotFound
			}
			return err
		}

		if err := tx.Where("id = ?", questionID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Question{}).
			Where("exam_id = ? AND `order` > ?", examID, q.Order).
			Update("order", gorm.Expr("`order` - 1")).Error
	})
	if err != nil {
		return err
	}

	// 配图清理失败不影响删除结果
	_ = s.Storage.Delete(ctx, QuestionImagePath(questionID))
	return nil
}

// List 参与者按序号升序查看题目，学生不返回正确答案
func (s *QuestionService) List(ctx context.Context, examID string, userID uint) ([]QuestionView, error) {
	role, p, err := s.ParticipantSvc.ResolveRole(examID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, util.ErrNotParticipant
	}
	if p.IsBlocked {
		return nil, util.ErrUserBlocked
	}

	qs, err := s.QuestionRepo.ListByExam(examID)
	if err != nil {
		return nil, err
	}

	withAnswer := role.CanManage()
	views := make([]QuestionView, 0, len(qs))
	for i := range qs {
		views = append(views, s.view(ctx, &qs[i], withAnswer))
	}
	return views, nil
}

// UploadImage 上传题目配图，覆盖旧图
func (s *QuestionService) UploadImage(ctx context.Context, examID, questionID string, userID uint, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.ParticipantSvc.RequireManager(examID, userID); err != nil {
		return "", err
	}
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil || q.ExamID != examID {
		return "", util.ErrQuestionNotFound
	}
	return s.Storage.Upload(ctx, QuestionImagePath(questionID), reader, size, contentType)
}
