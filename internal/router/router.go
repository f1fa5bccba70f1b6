package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zenhr/hr-assistant/internal/handler"
	"github.com/zenhr/hr-assistant/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TenantMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Chat 对话轮次
		chat := v1.Group("/chat")
		{
			chat.POST("", h.Chat.Turn)
			chat.POST("/feedback", h.Chat.Feedback)
		}

		// Conversation 会话管理
		conversations := v1.Group("/conversations")
		{
			conversations.GET("", h.Conversation.List)
			conversations.GET("/:id", h.Conversation.Get)
			conversations.POST("/:id/escalate", h.Conversation.Escalate)
			conversations.POST("/:id/end", h.Conversation.End)
		}
	}

	return r
}
