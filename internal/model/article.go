package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 知识文章发布状态
const (
	ArticlePublished = "published"
	ArticleDraft     = "draft"
)

// KnowledgeArticle 租户知识库文章
// 带意图标签，作为低置信度兜底匹配的数据源
type KnowledgeArticle struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID   string     `json:"tenant_id" gorm:"type:varchar(36);index"`
	Intent     string     `json:"intent" gorm:"type:varchar(64);index"`
	Title      string     `json:"title" gorm:"type:varchar(255)"`
	Content    string     `json:"content" gorm:"type:text"`
	Keywords   StringList `json:"keywords,omitempty" gorm:"type:jsonb"`
	Variations StringList `json:"variations,omitempty" gorm:"type:jsonb"`
	Status     string     `json:"status" gorm:"type:varchar(20);index;default:'draft'"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate GORM 钩子
func (a *KnowledgeArticle) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (KnowledgeArticle) TableName() string {
	return "knowledge_articles"
}
