package model

import "encoding/json"

// swagger:model Question
type Question struct {
	UUIDBase
	ExamID        string          `gorm:"type:varchar(36);not null;index" json:"examId"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Duration      int             `gorm:"default:0" json:"duration"` // 秒
	Options       json.RawMessage `gorm:"type:json" json:"options"`  // JSON: 选项标签 -> 内容
	CorrectOption string          `gorm:"size:10;not null" json:"correctOption"`
	Order         int             `gorm:"default:0" json:"order"` // 连续序号，从1开始
}

func (Question) TableName() string {
	return "questions"
}

// OptionMap 解析选项字段，选项格式非法时返回错误
func (q *Question) OptionMap() (map[string]string, error) {
	opts := map[string]string{}
	if len(q.Options) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
