package repository

import (
	"examroom_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Find(examID string, userID uint) (*model.Answer, error) {
	var a model.Answer
	err := r.DB.Where("exam_id = ? AND user_id = ?", examID, userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) ListByExam(examID string) ([]model.Answer, error) {
	var as []model.Answer
	err := r.DB.Where("exam_id = ?", examID).
		Order("created_at asc").
		Find(&as).Error
	return as, err
}

func (r *AnswerRepository) Exists(examID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Count(&count).Error
	return count > 0, err
}
