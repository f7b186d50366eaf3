package repository

import (
	"examroom_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) FindByID(id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Where("id = ?", id).First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

// participantScope 限定为调用者未被拉黑参与的考试
func (r *ExamRepository) participantScope(userID uint) *gorm.DB {
	return r.DB.Model(&model.Exam{}).
		Joins("JOIN participants ON participants.exam_id = exams.id AND participants.deleted_at IS NULL").
		Where("participants.user_id = ? AND participants.is_blocked = ?", userID, false)
}

// ListActive 我参与且尚未结束的考试
func (r *ExamRepository) ListActive(userID uint, now time.Time) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.participantScope(userID).
		Where("exams.finish_at > ?", now).
		Order("exams.created_at desc").
		Find(&exams).Error
	return exams, err
}

// ListUpcoming 一周内开始的考试
func (r *ExamRepository) ListUpcoming(userID uint, now time.Time) ([]model.Exam, error) {
	var exams []model.Exam
	oneWeekLater := now.AddDate(0, 0, 7)
	err := r.participantScope(userID).
		Where("exams.start_at > ? AND exams.start_at < ?", now, oneWeekLater).
		Order("exams.start_at desc").
		Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) ListOngoing(userID uint, now time.Time, limit int) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.participantScope(userID).
		Where("exams.start_at <= ? AND exams.finish_at > ?", now, now).
		Order("exams.finish_at desc").
		Limit(limit).
		Find(&exams).Error
	return exams, err
}

// ListFinished 我参与或我创建、已结束的考试
func (r *ExamRepository) ListFinished(userID uint, now time.Time) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Model(&model.Exam{}).
		Joins("LEFT JOIN participants ON participants.exam_id = exams.id AND participants.user_id = ? AND participants.deleted_at IS NULL", userID).
		Where("participants.id IS NOT NULL OR exams.created_by = ?", userID).
		Where("exams.finish_at < ?", now).
		Order("exams.finish_at desc").
		Find(&exams).Error
	return exams, err
}
