package engine

import "strings"

// 极性标签
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// 固定情感词表
var positiveLexicon = map[string]bool{
	"good": true, "great": true, "awesome": true, "excellent": true,
	"thanks": true, "thank": true, "helpful": true, "love": true,
	"nice": true, "perfect": true, "happy": true, "amazing": true,
	"wonderful": true, "best": true,
}

var negativeLexicon = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "useless": true,
	"hate": true, "angry": true, "frustrated": true, "wrong": true,
	"slow": true, "worst": true, "broken": true, "annoying": true,
	"unhappy": true, "poor": true,
}

// SentimentOf 词袋极性打分：正词 +1、负词 -1，按符号映射标签（0 为 neutral）
func SentimentOf(utterance string) string {
	score := 0
	for _, token := range tokenize(utterance) {
		if positiveLexicon[token] {
			score++
		} else if negativeLexicon[token] {
			score--
		}
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// tokenize 小写分词，剥离常见标点
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.Trim(f, ".,!?;:'\"()")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
