package engine

import (
	"context"
	"log"
)

// TrainableMatcher 对租户训练短语做词集相似度匹配
type TrainableMatcher struct {
	store IntentStore
}

// NewTrainableMatcher 创建可训练意图匹配器
func NewTrainableMatcher(store IntentStore) *TrainableMatcher {
	return &TrainableMatcher{store: store}
}

// Match 逐意图逐短语计算词集 Jaccard 相似度，保留唯一最优对
// 只保留相似度 > 0.5 的结果；存储错误吞掉，此路径静默不贡献
func (m *TrainableMatcher) Match(ctx context.Context, tenantID, utterance string) (DetectedIntent, bool) {
	if m.store == nil {
		return DetectedIntent{}, false
	}

	intents, err := m.store.ListActive(ctx, tenantID)
	if err != nil {
		log.Printf("Warning: trainable intent lookup failed: %v", err)
		return DetectedIntent{}, false
	}

	utteranceSet := tokenSet(utterance)
	if len(utteranceSet) == 0 {
		return DetectedIntent{}, false
	}

	bestName := ""
	bestScore := 0.0
	for _, intent := range intents {
		for _, phrase := range intent.Phrases {
			score := jaccard(utteranceSet, tokenSet(phrase))
			if score > bestScore {
				bestName = intent.Name
				bestScore = score
			}
		}
	}

	if bestScore <= SimilarityThreshold {
		return DetectedIntent{}, false
	}

	return DetectedIntent{
		Name:       bestName,
		Confidence: bestScore,
		Source:     "trainable",
	}, true
}

// tokenSet 小写词集
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenize(s) {
		set[token] = true
	}
	return set
}

// jaccard 交集大小 / 并集大小
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
