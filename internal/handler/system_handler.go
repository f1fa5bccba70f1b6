package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zenhr/hr-assistant/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc       *service.Services
	startTime time.Time
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc, startTime: time.Now()}
}

// Health 健康检查（含数据库连通性）
func (h *SystemHandler) Health(c *gin.Context) {
	database := "ok"
	if h.svc.Repo != nil && h.svc.Repo.DB != nil {
		if sqlDB, err := h.svc.Repo.DB.DB(); err != nil {
			database = "down"
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			database = "down"
		}
	}

	success(c, gin.H{
		"status":   "ok",
		"app":      h.svc.Config.App.Name,
		"version":  h.svc.Config.App.Version,
		"uptime":   time.Since(h.startTime).String(),
		"database": database,
	})
}
