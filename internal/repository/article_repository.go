package repository

import (
	"github.com/zenhr/hr-assistant/internal/model"
	"gorm.io/gorm"
)

// ArticleRepository 知识文章数据访问
type ArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository 创建知识文章仓库
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create 创建文章
func (r *ArticleRepository) Create(article *model.KnowledgeArticle) error {
	return r.db.Create(article).Error
}

// GetByID 获取文章
func (r *ArticleRepository) GetByID(id string) (*model.KnowledgeArticle, error) {
	var article model.KnowledgeArticle
	err := r.db.Where("id = ?", id).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// ListPublished 列出租户已发布的文章
func (r *ArticleRepository) ListPublished(tenantID string) ([]*model.KnowledgeArticle, error) {
	var articles []*model.KnowledgeArticle
	err := r.db.Where("tenant_id = ? AND status = ?", tenantID, model.ArticlePublished).
		Order("updated_at DESC").
		Find(&articles).Error
	return articles, err
}

// CountByTenant 统计租户文章数量
func (r *ArticleRepository) CountByTenant(tenantID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.KnowledgeArticle{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
