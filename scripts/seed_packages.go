// 手动套餐初始化脚本
//
// 应用启动时会在 packages 表为空的情况下自动写入默认套餐。
// 此脚本用于手动重置套餐定义，例如调价或调整容量后批量刷新。
//
// 用法: go run scripts/seed_packages.go

package main

import (
	"examroom_backend/internal/config"
	"examroom_backend/internal/model"
	"examroom_backend/pkg/database"
	"log"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	packages := []model.Package{
		{ID: "trial", Label: "Trial", MaxParticipant: 5, MaxQuestion: 10, Price: 0, FreeQuota: 1},
		{ID: "basic", Label: "Basic", MaxParticipant: 40, MaxQuestion: 50, Price: 49000, FreeQuota: 5},
		{ID: "pro", Label: "Pro", MaxParticipant: 200, MaxQuestion: 200, Price: 149000, FreeQuota: 20},
	}

	log.Println("开始刷新套餐定义...")
	for _, p := range packages {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&p).Error; err != nil {
			log.Fatalf("写入套餐 %s 失败: %v", p.ID, err)
		}
		log.Printf("套餐 %s 已更新", p.ID)
	}
	log.Println("完成！")
}
