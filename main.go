package main

import (
	"examroom_backend/internal/app"
	"examroom_backend/internal/config"
	"flag"
	"log"
)

// @title 考试平台 API
// @version 1.0
// @description 在线考试平台后端，提供考试、题目、作答与套餐管理
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := a.Run(*configDir); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
