package repository

import (
	"examroom_backend/internal/model"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	DB *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

func (r *ParticipantRepository) Find(examID string, userID uint) (*model.Participant, error) {
	var p model.Participant
	err := r.DB.Where("exam_id = ? AND user_id = ?", examID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) ListByExam(examID string, blocked bool) ([]model.Participant, error) {
	var ps []model.Participant
	err := r.DB.Where("exam_id = ? AND is_blocked = ?", examID, blocked).
		Order("join_at asc").
		Find(&ps).Error
	return ps, err
}

func (r *ParticipantRepository) Update(p *model.Participant) error {
	return r.DB.Save(p).Error
}

func (r *ParticipantRepository) Delete(examID string, userID uint) error {
	return r.DB.Where("exam_id = ? AND user_id = ?", examID, userID).
		Delete(&model.Participant{}).Error
}
