package model

import "time"

type ExamStatus string

const (
	ExamUpcoming ExamStatus = "upcoming"
	ExamOngoing  ExamStatus = "ongoing"
	ExamFinished ExamStatus = "finished"
)

// swagger:model Exam
type Exam struct {
	UUIDBase
	Title     string    `gorm:"size:255;not null" json:"title"`
	SubTitle  string    `gorm:"size:255;not null" json:"subTitle"`
	StartAt   time.Time `gorm:"not null;index" json:"startAt"`
	FinishAt  time.Time `gorm:"not null;index" json:"finishAt"`
	CreatedBy uint      `gorm:"index;type:bigint unsigned;not null" json:"createdBy"`
}

func (Exam) TableName() string {
	return "exams"
}

// StatusAt 根据当前时间推导考试状态，不落库
func (e *Exam) StatusAt(now time.Time) ExamStatus {
	switch {
	case now.Before(e.StartAt):
		return ExamUpcoming
	case now.Before(e.FinishAt):
		return ExamOngoing
	default:
		return ExamFinished
	}
}

func (e *Exam) IsOngoingAt(now time.Time) bool {
	return e.StatusAt(now) == ExamOngoing
}
