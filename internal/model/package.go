package model

import "time"

// swagger:model Package
type Package struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Label          string    `gorm:"size:100" json:"label"`
	MaxParticipant int       `gorm:"default:0" json:"maxParticipant"`
	MaxQuestion    int       `gorm:"default:0" json:"maxQuestion"`
	Price          int       `gorm:"default:0" json:"price"`
	FreeQuota      int       `gorm:"default:0" json:"freeQuota"`
}

func (Package) TableName() string {
	return "packages"
}

// PackageInfo 套餐解析结果，缺失字段已并入零值默认
type PackageInfo struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	MaxParticipant int    `json:"maxParticipant"`
	MaxQuestion    int    `json:"maxQuestion"`
	Price          int    `json:"price"`
	FreeQuota      int    `json:"freeQuota"`
}
