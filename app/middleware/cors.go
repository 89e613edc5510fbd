package middleware

import (
	"github.com/beego/beego/v2/server/web/context"
)

// CORSMiddleware 门户前端跨域支持
func CORSMiddleware(ctx *context.Context) {
	origin := ctx.Input.Header("Origin")

	allowedOrigins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:3000",
	}

	allowed := origin == ""
	for _, allowedOrigin := range allowedOrigins {
		if origin == allowedOrigin {
			allowed = true
			break
		}
	}

	if allowed && origin != "" {
		ctx.Output.Header("Access-Control-Allow-Origin", origin)
	}

	ctx.Output.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Output.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin")
	ctx.Output.Header("Access-Control-Allow-Credentials", "true")
	ctx.Output.Header("Access-Control-Max-Age", "3600")

	if ctx.Input.Method() == "OPTIONS" {
		ctx.Output.SetStatus(204)
		ctx.Output.Body([]byte(""))
	}
}
