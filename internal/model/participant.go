package model

import "time"

type ParticipantRole string

const (
	RoleOwner   ParticipantRole = "owner"
	RoleAdmin   ParticipantRole = "admin"
	RoleStudent ParticipantRole = "student"
)

type JoinMethod string

const (
	JoinByCreate JoinMethod = "create"
	JoinBySelf   JoinMethod = "join"
	JoinByInvite JoinMethod = "invite"
)

// swagger:model Participant
type Participant struct {
	BaseModel
	ExamID     string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_exam_user" json:"examId"`
	UserID     uint            `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_exam_user" json:"userId"`
	Role       ParticipantRole `gorm:"type:enum('owner','admin','student');default:'student'" json:"role"`
	IsBlocked  bool            `gorm:"default:false" json:"isBlocked"`
	JoinAt     time.Time       `json:"joinAt"`
	JoinMethod JoinMethod      `gorm:"size:20;default:'join'" json:"joinMethod"`
	Alias      string          `gorm:"size:100" json:"alias,omitempty"`
}

func (Participant) TableName() string {
	return "participants"
}
