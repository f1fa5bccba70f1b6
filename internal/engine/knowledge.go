package engine

import (
	"context"
	"log"
)

// KnowledgeMatcher 低置信度时的知识文章兜底匹配
type KnowledgeMatcher struct {
	searcher ArticleSearcher
}

// NewKnowledgeMatcher 创建知识兜底匹配器
func NewKnowledgeMatcher(searcher ArticleSearcher) *KnowledgeMatcher {
	return &KnowledgeMatcher{searcher: searcher}
}

// Match 租户范围内按相关度搜索已发布文章，取首条结果
// 置信度 = min(0.9, score/10)；搜索后端错误吞掉，此路径静默不贡献
func (m *KnowledgeMatcher) Match(ctx context.Context, tenantID, utterance string) (DetectedIntent, bool) {
	if m.searcher == nil {
		return DetectedIntent{}, false
	}

	hits, err := m.searcher.SearchPublished(ctx, tenantID, utterance, 1)
	if err != nil {
		log.Printf("Warning: knowledge search failed: %v", err)
		return DetectedIntent{}, false
	}
	if len(hits) == 0 || hits[0].Intent == "" {
		return DetectedIntent{}, false
	}

	conf := hits[0].Score / 10
	if conf > KnowledgeConfidenceCap {
		conf = KnowledgeConfidenceCap
	}
	if conf < 0 {
		conf = 0
	}

	return DetectedIntent{
		Name:       hits[0].Intent,
		Confidence: conf,
		Source:     "knowledge",
	}, true
}
