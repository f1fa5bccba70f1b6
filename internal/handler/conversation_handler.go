package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zenhr/hr-assistant/internal/service"
	"github.com/zenhr/hr-assistant/internal/service/conversation"
)

// ConversationHandler 对话管理处理器
type ConversationHandler struct {
	svc *service.Services
}

// NewConversationHandler 创建对话管理处理器
func NewConversationHandler(svc *service.Services) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// escalateBody 升级请求体
type escalateBody struct {
	Reason     string `json:"reason" binding:"required"`
	EscalateTo string `json:"escalate_to"`
}

// Escalate 升级会话给人工
func (h *ConversationHandler) Escalate(c *gin.Context) {
	var body escalateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	conv, err := h.svc.Conversation.Escalate(c.Request.Context(), &conversation.EscalateRequest{
		TenantID:   getTenantID(c),
		SessionID:  c.Param("id"),
		Reason:     body.Reason,
		EscalateTo: body.EscalateTo,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, conv)
}

// End 关闭会话
func (h *ConversationHandler) End(c *gin.Context) {
	conv, err := h.svc.Conversation.End(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, conv)
}

// List 列出租户对话
func (h *ConversationHandler) List(c *gin.Context) {
	page, size := getPagination(c)

	convs, total, err := h.svc.Conversation.List(c.Request.Context(), &conversation.ListRequest{
		TenantID: getTenantID(c),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, gin.H{"items": convs, "total": total, "page": page, "size": size})
}

// Get 获取对话详情
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.svc.Conversation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, conv)
}
