package handler

import (
	"github.com/zenhr/hr-assistant/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Chat         *ChatHandler
	Conversation *ConversationHandler
	System       *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Chat:         NewChatHandler(svc),
		Conversation: NewConversationHandler(svc),
		System:       NewSystemHandler(svc),
	}
}
