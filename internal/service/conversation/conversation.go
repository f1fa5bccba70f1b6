// Package conversation 提供对话生命周期管理：
// 轮次处理、反馈、升级与关闭，以及滚动统计维护
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zenhr/hr-assistant/internal/engine"
	"github.com/zenhr/hr-assistant/internal/model"
)

// Store 对话持久化接口（使用接口便于测试）
type Store interface {
	Create(conv *model.Conversation) error
	GetByID(id string) (*model.Conversation, error)
	GetBySessionKey(tenantID, sessionKey string) (*model.Conversation, error)
	List(tenantID string, offset, limit int) ([]*model.Conversation, error)
	Update(conv *model.Conversation) error
	CreateMessage(msg *model.Message) error
	GetMessageByID(id string) (*model.Message, error)
	UpdateMessageFeedback(id string, fb *model.MessageFeedback) error
	GetRecentMessages(conversationID string, limit int) ([]*model.Message, error)
}

// Service 对话服务
type Service struct {
	store        Store
	orchestrator *engine.Orchestrator
	cache        *ContextCache
	directory    engine.EmployeeService
	locks        *sessionLocks
	now          func() time.Time
}

// NewService 创建对话服务
func NewService(store Store, orchestrator *engine.Orchestrator, cache *ContextCache, directory engine.EmployeeService) *Service {
	return &Service{
		store:        store,
		orchestrator: orchestrator,
		cache:        cache,
		directory:    directory,
		locks:        newSessionLocks(),
		now:          time.Now,
	}
}

// TurnRequest 一轮对话请求
type TurnRequest struct {
	TenantID   string         `json:"tenant_id"`
	SessionID  string         `json:"session_id"`
	Message    string         `json:"message" binding:"required"`
	EmployeeID string         `json:"employee_id"`
	Channel    string         `json:"channel"`
	Metadata   map[string]any `json:"metadata"`
}

// ResponsePayload 助手响应
type ResponsePayload struct {
	Text             string         `json:"text"`
	Intent           string         `json:"intent"`
	Confidence       float64        `json:"confidence"`
	Entities         map[string]any `json:"entities,omitempty"`
	Sentiment        string         `json:"sentiment"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
	ActionExecuted   bool           `json:"action_executed"`
}

// ContextPayload 返回给调用方的上下文
type ContextPayload struct {
	CurrentIntent string `json:"current_intent"`
	LastTopic     string `json:"last_topic,omitempty"`
}

// TurnResponse 一轮对话响应
type TurnResponse struct {
	SessionID string          `json:"session_id"`
	Response  ResponsePayload `json:"response"`
	Context   ContextPayload  `json:"context"`
}

// Turn 处理一轮用户输入
// 同一会话内串行处理；每个已处理轮次恰好追加用户与助手各一条消息
func (s *Service) Turn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	sessionKey := req.SessionID
	if sessionKey == "" {
		sessionKey = uuid.New().String()
	}

	release := s.locks.Acquire(req.TenantID + ":" + sessionKey)
	defer release()

	conv, err := s.loadOrCreate(req, sessionKey)
	if err != nil {
		return nil, err
	}
	if conv.Context == nil {
		conv.Context = model.ContextMap{}
	}

	priorIntent := s.priorIntent(ctx, conv)
	history := s.recentTurns(conv.ID)

	start := s.now()
	result := s.orchestrator.ProcessTurn(ctx, &engine.TurnInput{
		TenantID:        conv.TenantID,
		EmployeeID:      conv.EmployeeID,
		Utterance:       req.Message,
		PriorIntent:     priorIntent,
		History:         history,
		EmployeeContext: s.employeeContext(ctx, conv),
	})
	latencyMs := float64(s.now().Sub(start).Microseconds()) / 1000

	userMsg := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        req.Message,
		Intent:         result.Intent.Name,
		Confidence:     result.Intent.Confidence,
		Entities:       model.JSONMap(result.Intent.Entities),
		Sentiment:      result.Sentiment,
	}
	assistantMsg := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        result.Text,
	}
	if result.ActionExecuted && result.Outcome != nil {
		assistantMsg.Actions = model.StringList{result.Outcome.Action}
	}

	if err := s.store.CreateMessage(userMsg); err != nil {
		return nil, fmt.Errorf("%w: failed to append user message: %v", ErrPersistence, err)
	}
	if err := s.store.CreateMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("%w: failed to append assistant message: %v", ErrPersistence, err)
	}

	topic := topicOf(result.Intent.Name)
	conv.Context["current_intent"] = result.Intent.Name
	conv.Context["last_topic"] = topic
	if len(result.Intent.Entities) > 0 {
		conv.Context["slots"] = result.Intent.Entities
	}

	if conv.Analytics == nil {
		conv.Analytics = &model.Analytics{}
	}
	conv.Analytics.MessageCount += 2
	conv.Analytics.TurnCount++
	conv.Analytics.AvgResponseTimeMs = engine.RollAverage(
		conv.Analytics.AvgResponseTimeMs, conv.Analytics.MessageCount, latencyMs)

	if err := s.store.Update(conv); err != nil {
		return nil, fmt.Errorf("%w: failed to update conversation: %v", ErrPersistence, err)
	}

	s.cache.Set(ctx, conv.TenantID, conv.SessionKey, &ContextSnapshot{
		CurrentIntent: result.Intent.Name,
		LastTopic:     topic,
	})

	return &TurnResponse{
		SessionID: conv.SessionKey,
		Response: ResponsePayload{
			Text:             result.Text,
			Intent:           result.Intent.Name,
			Confidence:       result.Intent.Confidence,
			Entities:         result.Intent.Entities,
			Sentiment:        result.Sentiment,
			SuggestedActions: result.SuggestedActions,
			ActionExecuted:   result.ActionExecuted,
		},
		Context: ContextPayload{CurrentIntent: result.Intent.Name, LastTopic: topic},
	}, nil
}

// loadOrCreate 按会话键加载对话，首轮自动创建
func (s *Service) loadOrCreate(req *TurnRequest, sessionKey string) (*model.Conversation, error) {
	conv, err := s.store.GetBySessionKey(req.TenantID, sessionKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: failed to load conversation: %v", ErrPersistence, err)
	}

	conv = &model.Conversation{
		ID:         uuid.New().String(),
		TenantID:   req.TenantID,
		SessionKey: sessionKey,
		EmployeeID: req.EmployeeID,
		Channel:    req.Channel,
		Status:     model.StatusActive,
		Context:    model.ContextMap{},
		Analytics:  &model.Analytics{},
	}
	if conv.Channel == "" {
		conv.Channel = "web"
	}
	if err := s.store.Create(conv); err != nil {
		return nil, fmt.Errorf("%w: failed to create conversation: %v", ErrPersistence, err)
	}
	return conv, nil
}

// priorIntent 上一轮意图：优先读缓存快照，未命中回落到对话文档
func (s *Service) priorIntent(ctx context.Context, conv *model.Conversation) string {
	if snapshot := s.cache.Get(ctx, conv.TenantID, conv.SessionKey); snapshot != nil {
		return snapshot.CurrentIntent
	}
	if intent, ok := conv.Context["current_intent"].(string); ok {
		return intent
	}
	return ""
}

// employeeContext 员工补充上下文（姓名、职位、部门）
// 首次从员工目录拉取，成功后随对话文档持久化复用；拉取失败仅告警
func (s *Service) employeeContext(ctx context.Context, conv *model.Conversation) string {
	if cached, ok := conv.Context["employee_context"].(string); ok {
		return cached
	}
	if s.directory == nil || conv.EmployeeID == "" {
		return ""
	}

	profile, err := s.directory.Profile(ctx, conv.TenantID, conv.EmployeeID)
	if err != nil {
		log.Printf("Warning: failed to load employee profile: %v", err)
		return ""
	}

	text := profile.Name
	if profile.Title != "" {
		text += ", " + profile.Title
	}
	if profile.Department != "" {
		text += ", " + profile.Department + " department"
	}
	conv.Context["employee_context"] = text
	return text
}

// recentTurns 最近历史轮次，读取失败时为空（不阻塞本轮）
func (s *Service) recentTurns(conversationID string) []engine.GenTurn {
	messages, err := s.store.GetRecentMessages(conversationID, engine.HistoryWindow)
	if err != nil {
		return nil
	}
	turns := make([]engine.GenTurn, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		turns = append(turns, engine.GenTurn{Role: string(msg.Role), Content: msg.Content})
	}
	return turns
}

// FeedbackRequest 消息反馈请求
type FeedbackRequest struct {
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id" binding:"required"`
	MessageID string `json:"message_id" binding:"required"`
	Helpful   *bool  `json:"helpful"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Feedback 把反馈附着到指定消息
// 评分更新满意度滚动均值；helpful=true 标记会话已解决
func (s *Service) Feedback(ctx context.Context, req *FeedbackRequest) error {
	release := s.locks.Acquire(req.TenantID + ":" + req.SessionID)
	defer release()

	conv, err := s.store.GetBySessionKey(req.TenantID, req.SessionID)
	if err != nil {
		return fmt.Errorf("%w: conversation %s", ErrNotFound, req.SessionID)
	}

	msg, err := s.store.GetMessageByID(req.MessageID)
	if err != nil || msg.ConversationID != conv.ID {
		return fmt.Errorf("%w: message %s", ErrNotFound, req.MessageID)
	}

	fb := &model.MessageFeedback{
		Helpful:   req.Helpful,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	if err := s.store.UpdateMessageFeedback(msg.ID, fb); err != nil {
		return fmt.Errorf("%w: failed to save feedback: %v", ErrPersistence, err)
	}

	if conv.Analytics == nil {
		conv.Analytics = &model.Analytics{}
	}
	changed := false
	if req.Rating > 0 {
		a := conv.Analytics
		a.SatisfactionScore = (a.SatisfactionScore*float64(a.RatingCount) + float64(req.Rating)) / float64(a.RatingCount+1)
		a.RatingCount++
		changed = true
	}
	if req.Helpful != nil && *req.Helpful {
		conv.Analytics.Resolution = "resolved"
		changed = true
	}
	if changed {
		if err := s.store.Update(conv); err != nil {
			return fmt.Errorf("%w: failed to update analytics: %v", ErrPersistence, err)
		}
	}
	return nil
}

// EscalateRequest 升级请求
type EscalateRequest struct {
	TenantID   string `json:"tenant_id"`
	SessionID  string `json:"session_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	EscalateTo string `json:"escalate_to"`
}

// Escalate 把会话升级给人工
// 追加恰好一条系统消息（messageCount +1，不计入轮次对）
func (s *Service) Escalate(ctx context.Context, req *EscalateRequest) (*model.Conversation, error) {
	release := s.locks.Acquire(req.TenantID + ":" + req.SessionID)
	defer release()

	conv, err := s.store.GetBySessionKey(req.TenantID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, req.SessionID)
	}

	if !conv.Status.CanTransition(model.StatusEscalated) {
		return nil, fmt.Errorf("%w: cannot escalate conversation in status %s", ErrValidation, conv.Status)
	}

	conv.Status = model.StatusEscalated
	conv.Escalation = &model.Escalation{
		Reason:      req.Reason,
		EscalatedTo: req.EscalateTo,
		EscalatedAt: s.now(),
		Resolved:    false,
	}

	systemMsg := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           model.RoleSystem,
		Content:        fmt.Sprintf("Conversation escalated to a human agent. Reason: %s", req.Reason),
	}
	if err := s.store.CreateMessage(systemMsg); err != nil {
		return nil, fmt.Errorf("%w: failed to append system message: %v", ErrPersistence, err)
	}

	if conv.Analytics == nil {
		conv.Analytics = &model.Analytics{}
	}
	conv.Analytics.MessageCount++

	if err := s.store.Update(conv); err != nil {
		return nil, fmt.Errorf("%w: failed to update conversation: %v", ErrPersistence, err)
	}
	return conv, nil
}

// End 关闭会话
// 对已关闭会话幂等；仅会话不存在时返回 not found
func (s *Service) End(ctx context.Context, tenantID, sessionID string) (*model.Conversation, error) {
	release := s.locks.Acquire(tenantID + ":" + sessionID)
	defer release()

	conv, err := s.store.GetBySessionKey(tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, sessionID)
	}

	if conv.Status == model.StatusClosed {
		return conv, nil
	}

	now := s.now()
	conv.Status = model.StatusClosed
	conv.EndedAt = &now
	if err := s.store.Update(conv); err != nil {
		return nil, fmt.Errorf("%w: failed to close conversation: %v", ErrPersistence, err)
	}

	s.cache.Delete(ctx, tenantID, sessionID)
	return conv, nil
}

// ListRequest 列出对话请求
type ListRequest struct {
	TenantID string `json:"tenant_id"`
	Page     int    `json:"page"`
	Size     int    `json:"size"`
}

// List 列出租户对话
func (s *Service) List(ctx context.Context, req *ListRequest) ([]*model.Conversation, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 100 {
		req.Size = 20
	}
	offset := (req.Page - 1) * req.Size

	convs, err := s.store.List(req.TenantID, offset, req.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, int64(len(convs)), nil
}

// Get 获取对话及其消息
func (s *Service) Get(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, id)
	}
	return conv, nil
}

// topicOf 意图名的粗粒度话题
func topicOf(intentName string) string {
	if i := strings.Index(intentName, "."); i > 0 {
		return intentName[:i]
	}
	return intentName
}
