package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/app/bootstrap"
	"github.com/vlabhub/labchat-go/app/router"
	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init(app)

	// 配置Beego全局设置
	web.BConfig.AppName = "LabChat"
	web.BConfig.CopyRequestBody = true
	if p, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	} else {
		web.BConfig.Listen.HTTPPort = 8080
	}
	if config.AppConfig.IsProduction() {
		web.BConfig.RunMode = web.PROD
	}

	logger.Info("🚀 Starting LabChat", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
