package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// GenerateTimeout 生成式后端调用超时
const GenerateTimeout = 10 * time.Second

// HistoryWindow 传给生成后端的历史消息上限
// 按轮次计为 10 轮，每轮用户与助手各一条消息
const HistoryWindow = 20

// systemPrompt 生成式兜底的固定系统提示
const systemPrompt = `You are a friendly HR assistant for an employee self-service portal.
Answer questions about leave, attendance, payroll and company policies concisely.
If a question is outside HR topics, politely redirect the employee to HR support.`

// defaultSuggestions 默认澄清回复的固定快捷建议
var defaultSuggestions = []string{
	"Check leave balance",
	"Apply for leave",
	"View attendance",
	"Contact HR support",
}

// TurnInput 一轮处理的输入
type TurnInput struct {
	TenantID   string
	EmployeeID string
	Utterance  string
	// 上一轮上下文意图，供上下文消解使用
	PriorIntent string
	// 最近的历史轮次，供生成式兜底使用（至多取 10 轮，即 20 条消息）
	History []GenTurn
	// 员工补充上下文（姓名、部门等），可为空
	EmployeeContext string
}

// TurnResult 一轮处理的输出
type TurnResult struct {
	Intent           DetectedIntent
	Text             string
	Sentiment        string
	SuggestedActions []string
	ActionExecuted   bool
	Outcome          *Outcome
}

// Orchestrator 对话编排器
// 融合各匹配信号为唯一意图，按置信度档位选择响应路径
type Orchestrator struct {
	patterns   *PatternMatcher
	extractor  *EntityExtractor
	knowledge  *KnowledgeMatcher
	trainable  *TrainableMatcher
	dispatcher *Dispatcher
	generator  Generator
}

// NewOrchestrator 创建对话编排器
func NewOrchestrator(knowledge *KnowledgeMatcher, trainable *TrainableMatcher, dispatcher *Dispatcher, generator Generator) *Orchestrator {
	return &Orchestrator{
		patterns:   NewPatternMatcher(),
		extractor:  NewEntityExtractor(),
		knowledge:  knowledge,
		trainable:  trainable,
		dispatcher: dispatcher,
		generator:  generator,
	}
}

// ProcessTurn 处理一轮用户输入
// 实体抽取与情感打分相互独立；意图按 模式 -> 知识 -> 可训练 -> 上下文 融合
func (o *Orchestrator) ProcessTurn(ctx context.Context, input *TurnInput) *TurnResult {
	entities := o.extractor.Extract(input.Utterance)
	sentiment := SentimentOf(input.Utterance)

	best := o.patterns.Match(input.Utterance)
	best.Entities = entities

	best = Fuse(ctx, best,
		func(ctx context.Context) (DetectedIntent, bool) {
			// 知识兜底仅在模式置信度不足时参与
			if best.Confidence >= KnowledgeTrigger {
				return DetectedIntent{}, false
			}
			return o.knowledge.Match(ctx, input.TenantID, input.Utterance)
		},
		func(ctx context.Context) (DetectedIntent, bool) {
			return o.trainable.Match(ctx, input.TenantID, input.Utterance)
		},
	)

	best = ResolveContext(best, input.PriorIntent, input.Utterance)
	if best.Entities == nil {
		best.Entities = entities
	}

	result := &TurnResult{
		Intent:    best,
		Sentiment: sentiment,
	}
	o.respond(ctx, input, result)
	return result
}

// respond 按置信度档位选择唯一响应路径
func (o *Orchestrator) respond(ctx context.Context, input *TurnInput, result *TurnResult) {
	intent := result.Intent

	if intent.Confidence > ActionBand && o.dispatcher != nil {
		if outcome, ok := o.dispatcher.Dispatch(ctx, intent, input.TenantID, input.EmployeeID); ok {
			result.Text = outcome.Message
			result.ActionExecuted = true
			result.Outcome = outcome
			result.SuggestedActions = suggestionsFor(intent.Name)
			return
		}
	}

	if intent.Confidence > TemplateBand {
		result.Text, result.SuggestedActions = o.template(intent)
		return
	}

	o.fallback(ctx, input, result)
}

// template 纯函数模板响应：(意图, 实体) -> 文本
func (o *Orchestrator) template(intent DetectedIntent) (string, []string) {
	switch intent.Name {
	case "greeting":
		return "Hello! I'm your HR assistant. I can help you with leave, attendance, payroll and more. What would you like to do?",
			[]string{"Check leave balance", "Apply for leave", "View attendance", "View payslip"}
	case "help":
		return "I can check your leave balance, file leave requests, track attendance, fetch payslips and look up colleagues. Just ask!",
			defaultSuggestions
	case "thanks":
		return "You're welcome! Is there anything else I can help you with?", nil
	case "goodbye":
		return "Goodbye! Feel free to reach out whenever you need HR help.", nil
	case "leave.apply":
		leaveType := "leave"
		if lt, ok := intent.Entities["leave_type"].(string); ok {
			leaveType = strings.ToLower(lt)
		}
		text := fmt.Sprintf("I can file a %s request for you. Please confirm the dates and I'll submit it.", leaveType)
		if date, ok := intent.Entities["date_resolved"].(string); ok {
			text = fmt.Sprintf("I can file a %s request for %s. Shall I submit it?", leaveType, date)
		}
		return text, []string{"Yes, submit", "Change dates", "Cancel"}
	case "leave.check_balance":
		return "I can look up your leave balance. Do you want me to fetch it now?",
			[]string{"Yes, show my balance", "Apply for leave"}
	case "payroll.payslip":
		return "I can fetch a payslip for you. Which month would you like?",
			[]string{"Last month", "Two months ago"}
	default:
		return fmt.Sprintf("It sounds like you're asking about %s. Could you give me a bit more detail?", topicOf(intent.Name)),
			defaultSuggestions
	}
}

// fallback 低置信度兜底：优先生成式后端，失败则走规则组
func (o *Orchestrator) fallback(ctx context.Context, input *TurnInput, result *TurnResult) {
	if o.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, GenerateTimeout)
		defer cancel()

		turns := input.History
		if len(turns) > HistoryWindow {
			turns = turns[len(turns)-HistoryWindow:]
		}
		system := systemPrompt
		if input.EmployeeContext != "" {
			system += "\n\nEmployee context: " + input.EmployeeContext
		}
		turns = append(append([]GenTurn{}, turns...), GenTurn{Role: "user", Content: input.Utterance})

		text, err := o.generator.Generate(genCtx, system, turns)
		if err == nil && strings.TrimSpace(text) != "" {
			result.Text = strings.TrimSpace(text)
			result.SuggestedActions = defaultSuggestions
			return
		}
		if err != nil {
			log.Printf("Warning: generative fallback failed: %v", err)
		}
	}

	for _, group := range fallbackGroups {
		if group.matches(input.Utterance) {
			result.Text = group.text
			result.SuggestedActions = group.suggestions
			return
		}
	}

	result.Text = "I'm not sure I understood that. Could you rephrase, or pick one of the options below?"
	result.SuggestedActions = defaultSuggestions
}

// ruleGroup 规则组：关键词命中即给出固定回复，首个命中生效
type ruleGroup struct {
	keywords    []string
	text        string
	suggestions []string
}

func (g *ruleGroup) matches(utterance string) bool {
	normalized := normalize(utterance)
	for _, kw := range g.keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// fallbackGroups 有序规则组表
var fallbackGroups = []ruleGroup{
	{
		keywords:    []string{"leave", "vacation", "holiday", "time off"},
		text:        "I can help with leave. You can check your balance, apply for leave, or track a pending request.",
		suggestions: []string{"Check leave balance", "Apply for leave", "Leave request status"},
	},
	{
		keywords:    []string{"salary", "pay", "payslip", "payroll"},
		text:        "For payroll I can show your salary details or fetch a payslip.",
		suggestions: []string{"View salary", "Get payslip"},
	},
	{
		keywords:    []string{"attendance", "check in", "check out", "clock"},
		text:        "I can mark your attendance or show today's record.",
		suggestions: []string{"Check in", "Check out", "Today's attendance"},
	},
	{
		keywords:    []string{"policy", "benefit", "insurance", "holiday list"},
		text:        "Company policies and benefits are documented in the knowledge base. Try asking about a specific policy.",
		suggestions: []string{"Leave policy", "Insurance benefits", "Holiday calendar"},
	},
}

// suggestionsFor 动作完成后的后续建议
func suggestionsFor(intentName string) []string {
	switch {
	case strings.HasPrefix(intentName, "leave."):
		return []string{"Apply for leave", "Leave request status"}
	case strings.HasPrefix(intentName, "attendance."):
		return []string{"Today's attendance"}
	case strings.HasPrefix(intentName, "payroll."):
		return []string{"Get payslip"}
	default:
		return nil
	}
}

// topicOf 意图名的粗粒度话题
func topicOf(intentName string) string {
	if i := strings.Index(intentName, "."); i > 0 {
		return intentName[:i]
	}
	return intentName
}

// RollAverage 滚动平均响应时间
// n 为本轮追加用户与助手消息之后的消息数（每轮 +2）
// 首轮平均即等于该轮时延，第二轮后为各轮时延的算术平均
func RollAverage(oldAvg float64, n int, latest float64) float64 {
	turns := n / 2
	if turns <= 1 {
		return latest
	}
	return (oldAvg*float64(turns-1) + latest) / float64(turns)
}
