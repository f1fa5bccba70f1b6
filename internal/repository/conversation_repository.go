package repository

import (
	"github.com/zenhr/hr-assistant/internal/model"
	"gorm.io/gorm"
)

// ConversationRepository 对话数据访问
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建对话仓库
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建对话
func (r *ConversationRepository) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// GetByID 获取对话
func (r *ConversationRepository) GetByID(id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetBySessionKey 按租户和会话键获取对话
func (r *ConversationRepository) GetBySessionKey(tenantID, sessionKey string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("tenant_id = ? AND session_key = ?", tenantID, sessionKey).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// List 列出租户对话
func (r *ConversationRepository) List(tenantID string, offset, limit int) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	query := r.db.Order("started_at DESC").Offset(offset).Limit(limit)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	err := query.Find(&convs).Error
	return convs, err
}

// Update 更新对话
func (r *ConversationRepository) Update(conv *model.Conversation) error {
	return r.db.Save(conv).Error
}

// CreateMessage 追加消息
func (r *ConversationRepository) CreateMessage(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// GetMessageByID 获取单条消息
func (r *ConversationRepository) GetMessageByID(id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessageFeedback 更新消息反馈
func (r *ConversationRepository) UpdateMessageFeedback(id string, fb *model.MessageFeedback) error {
	return r.db.Model(&model.Message{}).Where("id = ?", id).
		Update("feedback", fb).Error
}

// GetRecentMessages 获取对话最近的 N 条消息（时间正序）
func (r *ConversationRepository) GetRecentMessages(conversationID string, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// 反转为时间正序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
