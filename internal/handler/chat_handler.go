package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zenhr/hr-assistant/internal/service"
	"github.com/zenhr/hr-assistant/internal/service/conversation"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Turn 处理一轮对话
func (h *ChatHandler) Turn(c *gin.Context) {
	var req conversation.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.TenantID = resolveTenant(c, req.TenantID)

	resp, err := h.svc.Conversation.Turn(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, resp)
}

// Feedback 提交消息反馈
func (h *ChatHandler) Feedback(c *gin.Context) {
	var req conversation.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.TenantID = resolveTenant(c, req.TenantID)

	if err := h.svc.Conversation.Feedback(c.Request.Context(), &req); err != nil {
		errorResponse(c, err)
		return
	}
	success(c, gin.H{"recorded": true})
}
