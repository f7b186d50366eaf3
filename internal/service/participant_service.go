package service

import (
	"context"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"examroom_backend/pkg/monitoring"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamRole 调用者与某场考试的关系，统一的能力判定入口
type ExamRole string

const (
	ExamRoleNone    ExamRole = "none"
	ExamRoleStudent ExamRole = "student"
	ExamRoleAdmin   ExamRole = "admin"
	ExamRoleOwner   ExamRole = "owner"
)

// CanManage 管理考试元数据、题目、参与者，查看全部结果
func (r ExamRole) CanManage() bool {
	return r == ExamRoleOwner || r == ExamRoleAdmin
}

// CanDelete 仅创建者可删除考试
func (r ExamRole) CanDelete() bool {
	return r == ExamRoleOwner
}

func (r ExamRole) IsParticipant() bool {
	return r != ExamRoleNone
}

type ParticipantService struct {
	ExamRepo        *repository.ExamRepository
	ParticipantRepo *repository.ParticipantRepository
	UserRepo        *repository.UserRepository
	AnswerRepo      *repository.AnswerRepository
	PackageSvc      *PackageService
	DB              *gorm.DB
	JoinCloseMargin time.Duration
}

func NewParticipantService(
	examRepo *repository.ExamRepository,
	participantRepo *repository.ParticipantRepository,
	userRepo *repository.UserRepository,
	answerRepo *repository.AnswerRepository,
	packageSvc *PackageService,
	db *gorm.DB,
	joinCloseMargin time.Duration,
) *ParticipantService {
	return &ParticipantService{
		ExamRepo:        examRepo,
		ParticipantRepo: participantRepo,
		UserRepo:        userRepo,
		AnswerRepo:      answerRepo,
		PackageSvc:      packageSvc,
		DB:              db,
		JoinCloseMargin: joinCloseMargin,
	}
}

// ResolveRole 解析调用者在考试中的角色。考试不存在返回 ErrExamNotFound；
// 被拉黑的参与者降级为 none，blocked 单独返回
func (s *ParticipantService) ResolveRole(examID string, userID uint) (ExamRole, *model.Participant, error) {
	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExamRoleNone, nil, util.ErrExamNotFound
		}
		return ExamRoleNone, nil, err
	}

	p, err := s.ParticipantRepo.Find(examID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExamRoleNone, nil, nil
		}
		return ExamRoleNone, nil, err
	}

	if p.IsBlocked {
		return ExamRoleNone, p, nil
	}

	switch p.Role {
	case model.RoleOwner:
		return ExamRoleOwner, p, nil
	case model.RoleAdmin:
		return ExamRoleAdmin, p, nil
	default:
		return ExamRoleStudent, p, nil
	}
}

// RequireManager 保护性操作的统一前置检查。
// 非参与者按 404 处理而非 403，避免向外泄露考试是否存在
func (s *ParticipantService) RequireManager(examID string, userID uint) (ExamRole, error) {
	role, p, err := s.ResolveRole(examID, userID)
	if err != nil {
		return role, err
	}
	if p == nil {
		return role, util.ErrNotParticipant
	}
	if !role.CanManage() {
		return role, util.ErrPermissionDenied
	}
	return role, nil
}

// joinGate 入场检查，顺序固定，第一个失败即返回
func joinGate(exam *model.Exam, existing *model.Participant, activeCount int64, pkg model.PackageInfo, now time.Time, closeMargin time.Duration) error {
	if !now.Before(exam.FinishAt.Add(-closeMargin)) {
		return util.ErrExamClosed
	}
	if existing != nil && existing.IsBlocked {
		return util.ErrUserBlocked
	}
	if existing != nil {
		return util.ErrAlreadyJoined
	}
	if activeCount >= int64(pkg.MaxParticipant) {
		return util.ErrCapacityExceeded
	}
	return nil
}

// Join 加入考试。容量检查和写入在同一事务内完成，
// 事务中对考试行加锁，并发加入不会超出容量
func (s *ParticipantService) Join(ctx context.Context, examID string, userID uint) error {
	now := time.Now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var exam model.Exam
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", examID).First(&exam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrExamNotFound
			}
			return err
		}

		var existing *model.Participant
		var p model.Participant
		err := tx.Where("exam_id = ? AND user_id = ?", examID, userID).First(&p).Error
		if err == nil {
			existing = &p
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 容量只计非创建者的在席参与者，创建者不占名额
		var activeCount int64
		if err := tx.Model(&model.Participant{}).
			Where("exam_id = ? AND is_blocked = ? AND user_id <> ?", examID, false, exam.CreatedBy).
			Count(&activeCount).Error; err != nil {
			return err
		}

		// 容量始终取创建者的套餐，而非加入者的
		pkg := s.PackageSvc.ResolveForUser(ctx, exam.CreatedBy)

		if err := joinGate(&exam, existing, activeCount, pkg, now, s.JoinCloseMargin); err != nil {
			return err
		}

		return tx.Create(&model.Participant{
			ExamID:     examID,
			UserID:     userID,
			Role:       model.RoleStudent,
			JoinAt:     now,
			JoinMethod: model.JoinBySelf,
		}).Error
	})

	outcome := "success"
	if err != nil {
		outcome = "rejected"
	}
	monitoring.ExamJoinCounter.WithLabelValues(outcome).Inc()

	return err
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
	Alias string `json:"alias"`
}

// Invite 管理员按邮箱把用户加为参与者，同样受容量约束
func (s *ParticipantService) Invite(ctx context.Context, examID string, actorID uint, req InviteRequest) (*model.Participant, error) {
	if _, err := s.RequireManager(examID, actorID); err != nil {
		return nil, err
	}

	role := model.RoleStudent
	switch req.Role {
	case "", string(model.RoleStudent):
	case string(model.RoleAdmin):
		role = model.RoleAdmin
	default:
		return nil, util.ErrInvalidInput
	}

	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	var created model.Participant
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
		if err := tx.Model(&model.Participant{}).
			Where("exam_id = ? AND user_id = ?", examID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.ErrAlreadyJoined
		}

		var activeCount int64
		if err := tx.Model(&model.Participant{}).
			Where("exam_id = ? AND is_blocked = ? AND user_id <> ?", examID, false, exam.CreatedBy).
			Count(&activeCount).Error; err != nil {
			return err
		}
		pkg := s.PackageSvc.ResolveForUser(ctx, exam.CreatedBy)
		if activeCount >= int64(pkg.MaxParticipant) {
			return util.ErrCapacityExceeded
		}

		created = model.Participant{
			ExamID:     examID,
			UserID:     user.ID,
			Role:       role,
			JoinAt:     time.Now(),
			JoinMethod: model.JoinByInvite,
			Alias:      req.Alias,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ParticipantView 参与者列表项，附带用户投影和作答标记
type ParticipantView struct {
	model.Participant
	User      *UserProjection `json:"user,omitempty"`
	HasAnswer bool            `json:"hasAnswer"`
}

type UserProjection struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender int    `json:"gender"`
	Photo  string `json:"photo,omitempty"`
}

// List 管理员查看参与者（或黑名单）
func (s *ParticipantService) List(ctx context.Context, examID string, actorID uint, blocked bool, storage *StorageService) ([]ParticipantView, error) {
	if _, err := s.RequireManager(examID, actorID); err != nil {
		return nil, err
	}

	ps, err := s.ParticipantRepo.ListByExam(examID, blocked)
	if err != nil {
		return nil, err
	}

	views := make([]ParticipantView, 0, len(ps))
	for _, p := range ps {
		view := ParticipantView{Participant: p}
		if user, err := s.UserRepo.FindByID(p.UserID); err == nil {
			view.User = &UserProjection{
				ID:     user.ID,
				Name:   user.Name,
				Email:  user.Email,
				Gender: user.Gender,
				Photo:  storage.URLIfExists(ctx, ProfilePhotoPath(user.ID)),
			}
		}
		if ok, err := s.AnswerRepo.Exists(examID, p.UserID); err == nil {
			view.HasAnswer = ok
		}
		views = append(views, view)
	}
	return views, nil
}

type UpdateParticipantRequest struct {
	Alias   *string `json:"alias"`
	Role    *string `json:"role"`
	Blocked *bool   `json:"blocked"`
}

// Update 管理员调整参与者：别名、角色、拉黑/解除。
// 创建者的参与记录不可变更
func (s *ParticipantService) Update(examID string, actorID uint, targetID uint, req UpdateParticipantRequest) (*model.Participant, error) {
	if _, err := s.RequireManager(examID, actorID); err != nil {
		return nil, err
	}

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if targetID == exam.CreatedBy {
		return nil, util.ErrOwnerImmutable
	}

	p, err := s.ParticipantRepo.Find(examID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	if req.Alias != nil {
		p.Alias = *req.Alias
	}
	if req.Role != nil {
		switch *req.Role {
		case string(model.RoleStudent):
			p.Role = model.RoleStudent
		case string(model.RoleAdmin):
			p.Role = model.RoleAdmin
		default:
			return nil, util.ErrInvalidInput
		}
	}
	if req.Blocked != nil {
		if *req.Blocked && p.IsBlocked {
			return nil, util.ErrAlreadyBlocked
		}
		if !*req.Blocked && !p.IsBlocked {
			return nil, util.ErrNotBlocked
		}
		p.IsBlocked = *req.Blocked
	}

	if err := s.ParticipantRepo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove 移除参与者，创建者不可移除
func (s *ParticipantService) Remove(examID string, actorID uint, targetID uint) error {
	if _, err := s.RequireManager(examID, actorID); err != nil {
		return err
	}

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return util.ErrExamNotFound
	}
	if targetID == exam.CreatedBy {
		return util.ErrOwnerImmutable
	}

	if _, err := s.ParticipantRepo.Find(examID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotParticipant
		}
		return err
	}

	return s.ParticipantRepo.Delete(examID, targetID)
}
