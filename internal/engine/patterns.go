package engine

import (
	"regexp"
	"strings"
)

// intentPatterns 一个意图的有序匹配规则
type intentPatterns struct {
	name  string
	rules []*regexp.Regexp
}

// patternTable 静态规则表，进程启动时编译一次
// 表序即并列时的决胜顺序：置信度相同保留先注册的意图
var patternTable = []intentPatterns{
	{
		name: "greeting",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`^(hi|hello|hey|good\s+(morning|afternoon|evening))\b`),
		},
	},
	{
		name: "leave.check_balance",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(how\s+many|check|what('?s| is)\s+my)?\s*(leave|vacation|holiday)s?\s+(balance|days|left|remaining)`),
			regexp.MustCompile(`(leave|vacation)\s+balance`),
			regexp.MustCompile(`days?\s+(do\s+i\s+have\s+)?left`),
		},
	},
	{
		name: "leave.apply",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(apply|request|take|book|need)\s+(for\s+)?(a\s+)?(leave|vacation|holiday|day\s+off|time\s+off)`),
			regexp.MustCompile(`(sick|annual|casual|maternity|paternity|unpaid)\s+leave`),
			regexp.MustCompile(`want\s+to\s+take\s+.*\s*(off|leave)`),
		},
	},
	{
		name: "leave.status",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(leave|vacation)\s+(request\s+)?(status|approved|pending)`),
			regexp.MustCompile(`status\s+of\s+my\s+(leave|vacation)`),
			regexp.MustCompile(`pending\s+leaves?`),
		},
	},
	{
		name: "attendance.check_in",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(check|clock|punch)[\s-]*in`),
			regexp.MustCompile(`mark\s+(my\s+)?attendance`),
		},
	},
	{
		name: "attendance.check_out",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(check|clock|punch)[\s-]*out`),
		},
	},
	{
		name: "attendance.status",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(my\s+)?attendance\s+(today|status|record)`),
			regexp.MustCompile(`(did\s+i|when\s+did\s+i)\s+(check|clock)\s+in`),
		},
	},
	{
		name: "payroll.salary",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(my\s+)?(salary|pay|compensation|ctc)\b`),
			regexp.MustCompile(`how\s+much\s+(do\s+i|am\s+i)\s+(earn|paid|make)`),
		},
	},
	{
		name: "payroll.payslip",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`pay\s*slip`),
			regexp.MustCompile(`salary\s+(slip|statement)`),
		},
	},
	{
		name: "employee.profile",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(my\s+)?(profile|personal\s+(details|information))`),
			regexp.MustCompile(`update\s+my\s+(details|information)`),
		},
	},
	{
		name: "employee.search",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`(find|search|look\s*up|who\s+is)\s+(an?\s+)?(employee|colleague|coworker|person)`),
			regexp.MustCompile(`employee\s+director(y|ies)`),
		},
	},
	{
		name: "help",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`^(help|what\s+can\s+you\s+do)\b`),
		},
	},
	{
		name: "thanks",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`^(thanks|thank\s+you|thx)\b`),
		},
	},
	{
		name: "goodbye",
		rules: []*regexp.Regexp{
			regexp.MustCompile(`^(bye|goodbye|see\s+you)\b`),
		},
	},
}

// actionableIntents 允许分发到协作服务的意图白名单
var actionableIntents = map[string]bool{
	"leave.check_balance":  true,
	"leave.apply":          true,
	"leave.status":         true,
	"attendance.check_in":  true,
	"attendance.check_out": true,
	"attendance.status":    true,
	"payroll.salary":       true,
	"payroll.payslip":      true,
	"employee.profile":     true,
	"employee.search":      true,
}

// IsActionable 判断意图是否可分发
func IsActionable(name string) bool {
	return actionableIntents[name]
}

// PatternMatcher 基于规则表的意图匹配器
type PatternMatcher struct {
	table []intentPatterns
}

// NewPatternMatcher 创建意图匹配器（使用内置规则表）
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{table: patternTable}
}

// Match 对归一化后的输入逐意图逐规则匹配，保留全表最高置信度
// 无匹配返回 {unknown, 0}
func (m *PatternMatcher) Match(utterance string) DetectedIntent {
	normalized := normalize(utterance)
	best := DetectedIntent{Name: IntentUnknown, Confidence: 0, Source: "pattern"}
	if normalized == "" {
		return best
	}

	for _, ip := range m.table {
		for _, rule := range ip.rules {
			loc := rule.FindStringIndex(normalized)
			if loc == nil {
				continue
			}
			conf := patternConfidence(loc[1]-loc[0], len(normalized))
			// 严格大于：并列保留表序在前的意图
			if conf > best.Confidence {
				best = DetectedIntent{Name: ip.name, Confidence: conf, Source: "pattern"}
			}
		}
	}
	return best
}

// patternConfidence 匹配跨度占比越大置信度越高，封顶 0.95
func patternConfidence(spanLen, utteranceLen int) float64 {
	if utteranceLen == 0 {
		return 0
	}
	bonus := float64(spanLen) / float64(utteranceLen) * 0.5
	if bonus > 0.3 {
		bonus = 0.3
	}
	conf := 0.6 + bonus
	if conf > PatternConfidenceCap {
		conf = PatternConfidenceCap
	}
	return conf
}

// normalize 小写并去除首尾空白
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
