package model

import "encoding/json"

// AnswerItem 存储形态的单题作答，summary 已解析为结构化 JSON
type AnswerItem struct {
	QuestionID string          `json:"questionId"`
	Response   string          `json:"response"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}

// swagger:model Answer
type Answer struct {
	BaseModel
	ExamID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_exam_user" json:"examId"`
	UserID uint            `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_answer_exam_user" json:"userId"`
	Data   json.RawMessage `gorm:"type:json" json:"data"` // JSON: []AnswerItem
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) Items() ([]AnswerItem, error) {
	var items []AnswerItem
	if len(a.Data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(a.Data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *Answer) SetItems(items []AnswerItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	a.Data = data
	return nil
}
