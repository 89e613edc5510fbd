package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vlabhub/labchat-go/internal/database"
)

// RootController 根路径
type RootController struct {
	BaseController
}

// Index 服务标识
func (c *RootController) Index() {
	c.JSONSuccess(map[string]string{
		"service": "labchat",
		"status":  "running",
	})
}

// HealthController 健康检查
type HealthController struct {
	BaseController
}

// Health 汇报各依赖连通性；数据库不可用时返回503
func (c *HealthController) Health() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if database.DB == nil {
		checks["database"] = "not configured"
		healthy = false
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if database.RedisClient == nil {
		checks["redis"] = "not configured"
	} else if err := database.RedisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unreachable"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"checks":  checks,
		})
		return
	}
	c.JSONSuccess(map[string]interface{}{"checks": checks})
}
