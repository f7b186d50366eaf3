package model

import "time"

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Gender    int       `gorm:"default:0" json:"gender"` // 0:男 1:女
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Quota     int       `gorm:"default:0" json:"quota"` // 剩余创建考试额度
	PackageID string    `gorm:"size:36;index" json:"packageId"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
