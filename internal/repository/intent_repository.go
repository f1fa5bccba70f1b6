package repository

import (
	"github.com/zenhr/hr-assistant/internal/model"
	"gorm.io/gorm"
)

// IntentRepository 意图定义数据访问
type IntentRepository struct {
	db *gorm.DB
}

// NewIntentRepository 创建意图仓库
func NewIntentRepository(db *gorm.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

// Create 创建意图
func (r *IntentRepository) Create(intent *model.Intent) error {
	return r.db.Create(intent).Error
}

// GetByID 获取意图
func (r *IntentRepository) GetByID(id string) (*model.Intent, error) {
	var intent model.Intent
	err := r.db.Where("id = ?", id).First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// ListActive 列出租户的活跃意图
func (r *IntentRepository) ListActive(tenantID string) ([]*model.Intent, error) {
	var intents []*model.Intent
	err := r.db.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("priority DESC, name ASC").
		Find(&intents).Error
	return intents, err
}

// CountByTenant 统计租户意图数量
func (r *IntentRepository) CountByTenant(tenantID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Intent{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
