package middleware

import (
	"time"

	beecontext "github.com/beego/beego/v2/server/web/context"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/logger"
)

const requestStartKey = "requestStartTime"

// RequestLogBefore 记录请求开始时间
func RequestLogBefore(ctx *beecontext.Context) {
	ctx.Input.SetData(requestStartKey, time.Now())
}

// RequestLogAfter 输出访问日志
func RequestLogAfter(ctx *beecontext.Context) {
	start, ok := ctx.Input.GetData(requestStartKey).(time.Time)
	if !ok {
		return
	}

	logger.Info("http request",
		zap.String("method", ctx.Input.Method()),
		zap.String("path", ctx.Input.URL()),
		zap.Int("status", ctx.ResponseWriter.Status),
		zap.Duration("duration", time.Since(start)),
		zap.String("ip", ctx.Input.IP()))
}
