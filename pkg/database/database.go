package database

import (
	"examroom_backend/internal/config"
	"examroom_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Package{},
		&model.Exam{},
		&model.Participant{},
		&model.Question{},
		&model.Answer{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认套餐，空表时写入
	var count int64
	db.Model(&model.Package{}).Count(&count)
	if count == 0 {
		defaultPackages := []model.Package{
			{ID: "trial", Label: "Trial", MaxParticipant: 5, MaxQuestion: 10, Price: 0, FreeQuota: 1},
			{ID: "basic", Label: "Basic", MaxParticipant: 40, MaxQuestion: 50, Price: 49000, FreeQuota: 5},
			{ID: "pro", Label: "Pro", MaxParticipant: 200, MaxQuestion: 200, Price: 149000, FreeQuota: 20},
		}
		for _, p := range defaultPackages {
			db.Create(&p)
		}
	}

	return db, nil
}
