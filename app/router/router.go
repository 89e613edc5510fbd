package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vlabhub/labchat-go/app/bootstrap"
	"github.com/vlabhub/labchat-go/app/controllers"
	"github.com/vlabhub/labchat-go/app/middleware"
	"github.com/vlabhub/labchat-go/internal/config"
)

// Init registers all routes. Must be called after bootstrap.
func Init(app *bootstrap.App) {
	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)
	web.InsertFilter("/*", web.BeforeRouter, middleware.RequestLogBefore)
	web.InsertFilter("/*", web.FinishRouter, middleware.RequestLogAfter, web.WithReturnOnOutput(false))

	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")

	chatController := controllers.NewChatController(app.ChatService, app.JWTService)
	web.Router("/api/chat/ask", chatController, "post:Ask")

	searchController := controllers.NewSearchController(app.RetrievalService)
	web.Router("/api/search", searchController, "get:Search")

	if config.AppConfig != nil && config.AppConfig.Metrics.Enabled {
		web.Handler("/metrics", promhttp.Handler())
	}
}
