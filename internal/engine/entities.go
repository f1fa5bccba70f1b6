package engine

import (
	"regexp"
	"strings"
	"time"
)

// entityPattern 一种实体类型的扫描规则
type entityPattern struct {
	entityType string
	rule       *regexp.Regexp
}

// entityTable 实体扫描规则表，对原始大小写文本独立扫描
var entityTable = []entityPattern{
	{"date", regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|monday|tuesday|wednesday|thursday|friday|saturday|sunday|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})\b`)},
	{"number", regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)},
	{"leave_type", regexp.MustCompile(`(?i)\b(annual|sick|casual|maternity|paternity|unpaid|earned)\s+leave\b`)},
	{"duration", regexp.MustCompile(`(?i)\b\d+\s*(?:day|days|week|weeks|hour|hours)\b`)},
	{"month", regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)},
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// EntityExtractor 基于规则表的实体抽取器
type EntityExtractor struct {
	now func() time.Time
}

// NewEntityExtractor 创建实体抽取器
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{now: time.Now}
}

// Extract 对每种实体类型独立扫描
// 同类型多个匹配返回列表，单个匹配返回标量
func (e *EntityExtractor) Extract(utterance string) map[string]any {
	entities := make(map[string]any)

	for _, ep := range entityTable {
		matches := ep.rule.FindAllString(utterance, -1)
		if len(matches) == 0 {
			continue
		}
		if len(matches) == 1 {
			entities[ep.entityType] = matches[0]
		} else {
			values := make([]any, len(matches))
			for i, m := range matches {
				values[i] = m
			}
			entities[ep.entityType] = values
		}
	}

	// 相对日期二次解析；解析失败保留原始匹配，resolved 为 nil
	if raw, ok := entities["date"]; ok {
		switch v := raw.(type) {
		case string:
			entities["date_resolved"] = e.resolveDate(v)
		case []any:
			resolved := make([]any, len(v))
			for i, d := range v {
				if s, ok := d.(string); ok {
					resolved[i] = e.resolveDate(s)
				}
			}
			entities["date_resolved"] = resolved
		}
	}

	return entities
}

// resolveDate 将相对日期关键词解析为绝对日期（yyyy-mm-dd）
// 星期名总是解析到下一次出现：当天同名时前移整整一周
func (e *EntityExtractor) resolveDate(raw string) any {
	now := e.now()
	lower := strings.ToLower(strings.TrimSpace(raw))

	switch lower {
	case "today":
		return now.Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case "yesterday":
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	}

	if wd, ok := weekdays[lower]; ok {
		days := int(wd-now.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format("2006-01-02")
	}

	for _, layout := range []string{"2006-01-02", "1/2/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return nil
}
