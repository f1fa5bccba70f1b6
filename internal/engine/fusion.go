package engine

import "context"

// CandidateSource 一个候选意图来源
// 返回 false 表示此来源不贡献候选
type CandidateSource func(ctx context.Context) (DetectedIntent, bool)

// Fuse 对候选来源做"严格更优则替换"的折叠
// 决胜与替换规则集中在这一处，便于单独审计和测试
func Fuse(ctx context.Context, best DetectedIntent, sources ...CandidateSource) DetectedIntent {
	for _, source := range sources {
		candidate, ok := source(ctx)
		if !ok {
			continue
		}
		if candidate.Confidence > best.Confidence {
			entities := best.Entities
			if candidate.Entities != nil {
				entities = candidate.Entities
			}
			best = candidate
			best.Entities = entities
		}
	}
	return best
}
