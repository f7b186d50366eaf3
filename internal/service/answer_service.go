package service

import (
	"encoding/json"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerService struct {
	AnswerRepo      *repository.AnswerRepository
	QuestionRepo    *repository.QuestionRepository
	ParticipantRepo *repository.ParticipantRepository
	UserRepo        *repository.UserRepository
	ExamRepo        *repository.ExamRepository
	ParticipantSvc  *ParticipantService
	DB              *gorm.DB
}

func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	participantRepo *repository.ParticipantRepository,
	userRepo *repository.UserRepository,
	examRepo *repository.ExamRepository,
	participantSvc *ParticipantService,
	db *gorm.DB,
) *AnswerService {
	return &AnswerService{
		AnswerRepo:      answerRepo,
		QuestionRepo:    questionRepo,
		ParticipantRepo: participantRepo,
		UserRepo:        userRepo,
		ExamRepo:        examRepo,
		ParticipantSvc:  participantSvc,
		DB:              db,
	}
}

// SubmitAnswerItem 提交形态的单题作答，summary 在线上是序列化后的字符串
type SubmitAnswerItem struct {
	QuestionID string `json:"questionId" binding:"required"`
	Response   string `json:"response"`
	Summary    string `json:"summary"`
}

type SubmitAnswerRequest struct {
	Data []SubmitAnswerItem `json:"data" binding:"required"`
}

// parseSummary 把线上的字符串 summary 规范化为结构化 JSON。
// 空串置空，非法 JSON 按原文转成 JSON 字符串保存
func parseSummary(raw string) json.RawMessage {
	if raw == "" {
		return nil
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}

// renderSummary 读取方向的逆变换，保持线上始终是字符串
func renderSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}

// mergeAnswerItems 按题目合并作答：已有题目就地替换，新题目追加到末尾。
// 同一批提交中后出现的覆盖先出现的，多次提交同一内容结果不变
func mergeAnswerItems(existing []model.AnswerItem, incoming []model.AnswerItem) []model.AnswerItem {
	merged := make([]model.AnswerItem, len(existing))
	copy(merged, existing)

	for _, in := range incoming {
		replaced := false
		for i := range merged {
			if merged[i].QuestionID == in.QuestionID {
				merged[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, in)
		}
	}
	return merged
}

// Submit 提交作答。考试结束后拒绝；合并在作答行锁内完成，
// 并发提交不同题目互不覆盖
func (s *AnswerService) Submit(examID string, userID uint, req SubmitAnswerRequest) error {
	_, p, err := s.ParticipantSvc.ResolveRole(examID, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return util.ErrNotParticipant
	}
	if p.IsBlocked {
		return util.ErrUserBlocked
	}

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return util.ErrExamNotFound
	}
	now := time.Now()
	if now.Before(exam.StartAt) {
		return util.ErrExamNotStarted
	}
	if !now.Before(exam.FinishAt) {
		return util.ErrExamClosed
	}

	incoming := make([]model.AnswerItem, 0, len(req.Data))
	for _, item := range req.Data {
		incoming = append(incoming, model.AnswerItem{
			QuestionID: item.QuestionID,
			Response:   item.Response,
			Summary:    parseSummary(item.Summary),
		})
	}

	merge := func(tx *gorm.DB) error {
		var answer model.Answer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("exam_id = ? AND user_id = ?", examID, userID).
			First(&answer).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			answer = model.Answer{ExamID: examID, UserID: userID}
		}

		existing, err := answer.Items()
		if err != nil {
			return err
		}
		if err := answer.SetItems(mergeAnswerItems(existing, incoming)); err != nil {
			return err
		}

		if answer.ID == 0 {
			return tx.Create(&answer).Error
		}
		return tx.Save(&answer).Error
	}

	// 同一用户两次首提并发时，双方都查不到既有行并都走 Create，
	// 唯一索引让后者冲突；重试一次即可命中已提交的行并正常合并
	err = s.DB.Transaction(merge)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.DB.Transaction(merge)
	}
	return err
}

// AnswerItemView 线上投影，summary 以字符串形式返回
type AnswerItemView struct {
	QuestionID string `json:"questionId"`
	Response   string `json:"response"`
	Summary    string `json:"summary,omitempty"`
}

type AnswerView struct {
	ExamID    string           `json:"examId"`
	UserID    uint             `json:"userId"`
	Data      []AnswerItemView `json:"data"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func answerView(a *model.Answer) (*AnswerView, error) {
	items, err := a.Items()
	if err != nil {
		return nil, err
	}
	data := make([]AnswerItemView, 0, len(items))
	for _, item := range items {
		data = append(data, AnswerItemView{
			QuestionID: item.QuestionID,
			Response:   item.Response,
			Summary:    renderSummary(item.Summary),
		})
	}
	return &AnswerView{
		ExamID:    a.ExamID,
		UserID:    a.UserID,
		Data:      data,
		UpdatedAt: a.UpdatedAt,
	}, nil
}

// Get 查看作答。学生只能看自己的；owner 和 admin 可以指定参与者
func (s *AnswerService) Get(examID string, actorID uint, targetID uint) (*AnswerView, error) {
	role, p, err := s.ParticipantSvc.ResolveRole(examID, actorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, util.ErrNotParticipant
	}
	if targetID != actorID && !role.CanManage() {
		return nil, util.ErrPermissionDenied
	}

	answer, err := s.AnswerRepo.Find(examID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}
	return answerView(answer)
}

// QuestionResult 单题提交情况，不做判分
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
	Response   string `json:"response,omitempty"`
	Answered   bool   `json:"answered"`
}

// StudentResult 学生视角的提交概览
type StudentResult struct {
	ExamID    string           `json:"examId"`
	Total     int              `json:"total"`
	Answered  int              `json:"answered"`
	Questions []QuestionResult `json:"questions"`
}

// summarize 按题目顺序对照作答，统计提交情况
func summarize(questions []model.Question, items []model.AnswerItem) StudentResult {
	byQuestion := make(map[string]model.AnswerItem, len(items))
	for _, item := range items {
		byQuestion[item.QuestionID] = item
	}

	result := StudentResult{Total: len(questions)}
	for _, q := range questions {
		qr := QuestionResult{
			QuestionID: q.ID,
			Order:      q.Order,
		}
		if item, ok := byQuestion[q.ID]; ok {
			result.Answered++
			qr.Response = item.Response
			qr.Answered = true
		}
		result.Questions = append(result.Questions, qr)
	}
	return result
}

// StudentResultView 学生查看自己的提交概览，考试结束前不可见
func (s *AnswerService) StudentResultView(examID string, userID uint) (*StudentResult, error) {
	_, p, err := s.ParticipantSvc.ResolveRole(examID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, util.ErrNotParticipant
	}
	if p.IsBlocked {
		return nil, util.ErrUserBlocked
	}

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if time.Now().Before(exam.FinishAt) {
		return nil, util.ErrPermissionDenied
	}

	questions, err := s.QuestionRepo.ListByExam(examID)
	if err != nil {
		return nil, err
	}

	var items []model.AnswerItem
	if answer, err := s.AnswerRepo.Find(examID, userID); err == nil {
		if items, err = answer.Items(); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := summarize(questions, items)
	result.ExamID = examID
	return &result, nil
}

// TeacherResultRow 管理员视角的单个参与者提交情况
type TeacherResultRow struct {
	UserID   uint   `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Alias    string `json:"alias,omitempty"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// TeacherResultView 管理员查看全员提交情况，随时可看
func (s *AnswerService) TeacherResultView(examID string, actorID uint) ([]TeacherResultRow, error) {
	if _, err := s.ParticipantSvc.RequireManager(examID, actorID); err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByExam(examID)
	if err != nil {
		return nil, err
	}
	participants, err := s.ParticipantRepo.ListByExam(examID, false)
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.ListByExam(examID)
	if err != nil {
		return nil, err
	}

	answerByUser := make(map[uint]*model.Answer, len(answers))
	for i := range answers {
		answerByUser[answers[i].UserID] = &answers[i]
	}

	rows := make([]TeacherResultRow, 0, len(participants))
	for _, p := range participants {
		row := TeacherResultRow{
			UserID: p.UserID,
			Alias:  p.Alias,
			Total:  len(questions),
		}
		if user, err := s.UserRepo.FindByID(p.UserID); err == nil {
			row.Name = user.Name
			row.Email = user.Email
		}
		if a, ok := answerByUser[p.UserID]; ok {
			items, err := a.Items()
			if err != nil {
				return nil, err
			}
			row.Answered = summarize(questions, items).Answered
		}
		rows = append(rows, row)
	}
	return rows, nil
}
