package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intent 租户可配置的意图定义
// 训练短语供相似度匹配使用，只读输入
type Intent struct {
	ID              string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID        string     `json:"tenant_id" gorm:"type:varchar(36);uniqueIndex:idx_tenant_intent"`
	Name            string     `json:"name" gorm:"type:varchar(64);uniqueIndex:idx_tenant_intent"`
	Category        string     `json:"category" gorm:"type:varchar(50);index"`
	TrainingPhrases StringList `json:"training_phrases" gorm:"type:jsonb"`
	EntitySlots     StringList `json:"entity_slots,omitempty" gorm:"type:jsonb"`
	Responses       StringList `json:"responses,omitempty" gorm:"type:jsonb"`
	Priority        int        `json:"priority" gorm:"default:0"`
	IsActive        bool       `json:"is_active" gorm:"index;default:true"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate GORM 钩子
func (i *Intent) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (Intent) TableName() string {
	return "intents"
}
