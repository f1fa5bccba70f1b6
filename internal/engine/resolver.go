package engine

// confirmLexicon 固定确认词表
var confirmLexicon = map[string]bool{
	"yes":     true,
	"confirm": true,
	"okay":    true,
	"ok":      true,
	"sure":    true,
	"submit":  true,
}

// pendingFlows 进行中的多步流程 -> 确认变体意图
var pendingFlows = map[string]string{
	"leave.apply":          "leave.apply.confirm",
	"attendance.check_out": "attendance.check_out.confirm",
}

// ResolveContext 用上一轮上下文消解低置信度结果
// 仅当融合置信度 < 0.7 且上一轮意图是进行中流程、当前输入命中确认词表时，
// 覆盖为该流程的确认变体，固定置信度 0.85；否则原样返回
func ResolveContext(candidate DetectedIntent, priorIntent, utterance string) DetectedIntent {
	if candidate.Confidence >= ActionBand {
		return candidate
	}
	confirmIntent, pending := pendingFlows[priorIntent]
	if !pending {
		return candidate
	}
	if !confirmLexicon[normalize(utterance)] {
		return candidate
	}
	return DetectedIntent{
		Name:       confirmIntent,
		Confidence: ContextConfirmScore,
		Entities:   candidate.Entities,
		Source:     "context",
	}
}
