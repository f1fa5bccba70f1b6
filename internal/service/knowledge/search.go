// Package knowledge 提供知识文章的 Elasticsearch 搜索与索引
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/zenhr/hr-assistant/internal/config"
	"github.com/zenhr/hr-assistant/internal/engine"
	"github.com/zenhr/hr-assistant/internal/model"
)

// ESSearcher Elasticsearch 搜索接口，用于抽象 ES 客户端
type ESSearcher interface {
	DoSearch(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error)
}

// ESResponse Elasticsearch 搜索响应
type ESResponse struct {
	IsError bool
	Body    io.ReadCloser
	String  string
}

// Searcher 租户知识文章搜索服务，实现 engine.ArticleSearcher
type Searcher struct {
	es    ESSearcher
	index string
}

// New 创建文章搜索服务
func New(cfg *config.Config) (*Searcher, error) {
	if cfg.Elastic.Host == "" {
		return nil, fmt.Errorf("elasticsearch host not configured")
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.Host},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	// 适配器包装真实 ES 客户端，便于测试替换
	searcher := &realESSearcher{client: esClient}
	return &Searcher{
		es:    searcher,
		index: cfg.Elastic.IndexPrefix + "_articles",
	}, nil
}

// NewWithSearcher 使用自定义搜索器创建（测试用）
func NewWithSearcher(es ESSearcher, index string) *Searcher {
	return &Searcher{es: es, index: index}
}

// SearchPublished 租户范围内按相关度搜索已发布文章
func (s *Searcher) SearchPublished(ctx context.Context, tenantID, query string, limit int) ([]*engine.ArticleHit, error) {
	if limit <= 0 {
		limit = 5
	}

	// 构建 ES 查询：租户 + 已发布过滤，标题/正文/关键词相关度打分
	esQuery := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"tenant_id": tenantID},
					},
					map[string]interface{}{
						"term": map[string]interface{}{"status": model.ArticlePublished},
					},
				},
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"title^2", "content", "keywords^2", "variations"},
						},
					},
				},
			},
		},
	}

	queryJSON, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.es.DoSearch(ctx, s.index, queryJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String)
	}

	var response struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]*engine.ArticleHit, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		article := &engine.ArticleHit{Score: hit.Score}
		if v, ok := hit.Source["intent"].(string); ok {
			article.Intent = v
		}
		if v, ok := hit.Source["title"].(string); ok {
			article.Title = v
		}
		if v, ok := hit.Source["content"].(string); ok {
			article.Content = v
		}
		hits = append(hits, article)
	}
	return hits, nil
}

// realESSearcher 真实 ES 客户端的适配器
type realESSearcher struct {
	client *elasticsearch.Client
}

func (r *realESSearcher) DoSearch(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error) {
	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(index),
		r.client.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, err
	}
	return &ESResponse{
		IsError: res.IsError(),
		Body:    res.Body,
		String:  res.String(),
	}, nil
}

// Indexer 文章索引器，把数据库中的文章写入 ES
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

// NewIndexer 创建文章索引器
func NewIndexer(cfg *config.Config) (*Indexer, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.Host},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Indexer{client: esClient, index: cfg.Elastic.IndexPrefix + "_articles"}, nil
}

// IndexArticle 索引单篇文章
func (i *Indexer) IndexArticle(ctx context.Context, article *model.KnowledgeArticle) error {
	doc := map[string]interface{}{
		"tenant_id":  article.TenantID,
		"intent":     article.Intent,
		"title":      article.Title,
		"content":    article.Content,
		"keywords":   strings.Join(article.Keywords, " "),
		"variations": strings.Join(article.Variations, " "),
		"status":     article.Status,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: article.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}
