// Package model 提供对话相关的数据模型
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationStatus 对话状态（封闭枚举）
type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusEscalated ConversationStatus = "escalated"
	StatusClosed    ConversationStatus = "closed"
)

// CanTransition 判断状态迁移是否合法
// active -> escalated -> closed，active -> closed；closed 为终态
func (s ConversationStatus) CanTransition(to ConversationStatus) bool {
	switch s {
	case StatusActive:
		return to == StatusEscalated || to == StatusClosed
	case StatusEscalated:
		return to == StatusClosed
	default:
		return false
	}
}

// MessageRole 消息角色（封闭枚举）
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Conversation 对话文档
// 一个会话属于一个租户，消息按时间追加，只关闭不删除
type Conversation struct {
	ID         string             `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID   string             `json:"tenant_id" gorm:"type:varchar(36);uniqueIndex:idx_tenant_session"`
	SessionKey string             `json:"session_key" gorm:"type:varchar(64);uniqueIndex:idx_tenant_session"`
	EmployeeID string             `json:"employee_id,omitempty" gorm:"type:varchar(36);index"`
	Channel    string             `json:"channel" gorm:"type:varchar(20);default:'web'"`
	Status     ConversationStatus `json:"status" gorm:"type:varchar(20);index;default:'active'"`

	Context    ContextMap  `json:"context,omitempty" gorm:"type:jsonb"`
	Analytics  *Analytics  `json:"analytics,omitempty" gorm:"type:jsonb"`
	Escalation *Escalation `json:"escalation,omitempty" gorm:"type:jsonb"`

	StartedAt time.Time  `json:"started_at" gorm:"autoCreateTime"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// BeforeCreate GORM 钩子
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.Analytics == nil {
		c.Analytics = &Analytics{}
	}
	if c.Context == nil {
		c.Context = ContextMap{}
	}
	return nil
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

// Message 对话消息，追加后不可变
type Message struct {
	ID             string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	ConversationID string      `json:"conversation_id" gorm:"type:varchar(36);index"`
	Role           MessageRole `json:"role" gorm:"type:varchar(20);index"`
	Content        string      `json:"content" gorm:"type:text"`

	Intent     string           `json:"intent,omitempty" gorm:"type:varchar(64)"`
	Confidence float64          `json:"confidence,omitempty" gorm:"default:0"`
	Entities   JSONMap          `json:"entities,omitempty" gorm:"type:jsonb"`
	Sentiment  string           `json:"sentiment,omitempty" gorm:"type:varchar(16)"`
	Actions    StringList       `json:"actions,omitempty" gorm:"type:jsonb"`
	Feedback   *MessageFeedback `json:"feedback,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// Analytics 对话滚动统计
type Analytics struct {
	MessageCount      int     `json:"message_count"`
	TurnCount         int     `json:"turn_count"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	SatisfactionScore float64 `json:"satisfaction_score"`
	RatingCount       int     `json:"rating_count"`
	Resolution        string  `json:"resolution,omitempty"`
}

// Escalation 升级记录
type Escalation struct {
	Reason      string    `json:"reason"`
	EscalatedTo string    `json:"escalated_to,omitempty"`
	EscalatedAt time.Time `json:"escalated_at"`
	Resolved    bool      `json:"resolved"`
}

// MessageFeedback 消息反馈
type MessageFeedback struct {
	Helpful   *bool     `json:"helpful,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextMap 对话上下文（当前意图、槽位值、最近话题）
type ContextMap map[string]any

// JSONMap 通用 JSON 字段
type JSONMap map[string]any

// StringList JSON 字符串数组字段
type StringList []string

// Value 实现 driver.Valuer for ContextMap
func (m ContextMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner for ContextMap
func (m *ContextMap) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, m)
}

// Value 实现 driver.Valuer for JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner for JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, m)
}

// Value 实现 driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, l)
}

// Value 实现 driver.Valuer for Analytics
func (a *Analytics) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner for Analytics
func (a *Analytics) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, a)
}

// Value 实现 driver.Valuer for Escalation
func (e *Escalation) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan 实现 sql.Scanner for Escalation
func (e *Escalation) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, e)
}

// Value 实现 driver.Valuer for MessageFeedback
func (f *MessageFeedback) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan 实现 sql.Scanner for MessageFeedback
func (f *MessageFeedback) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, f)
}
