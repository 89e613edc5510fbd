package controllers

import (
	"net/http"
	"strings"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/auth"
	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/logger"
)

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// getAuthenticatedUserID 校验门户签发的JWT，返回用户ID。
// 生产环境强制要求有效token；其余环境缺token时退回开发用户并告警。
func (c *BaseController) getAuthenticatedUserID(jwtService *auth.JWTService) (string, bool) {
	authHeader := c.Ctx.Input.Header("Authorization")
	if authHeader != "" && jwtService != nil {
		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err == nil {
			claims, err := jwtService.ValidateToken(token)
			if err == nil {
				return claims.UserID, true
			}
			logger.Warn("invalid portal token", zap.Error(err))
		}
	}

	if config.AppConfig != nil && config.AppConfig.IsProduction() {
		return "", false
	}

	logger.Warn("using default user ID in non-production environment",
		zap.String("path", c.Ctx.Request.RequestURI),
		zap.String("method", c.Ctx.Request.Method),
		zap.String("ip", c.getClientIP()))
	return "dev-user", true
}

// getClientIP 获取客户端真实IP地址
func (c *BaseController) getClientIP() string {
	xForwardedFor := c.Ctx.Input.Header("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Ctx.Input.Header("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.Ctx.Input.IP()
}
