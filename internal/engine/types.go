// Package engine 实现对话决策管线：
// 意图分类、实体抽取、多信号融合、响应路径选择与动作分发
package engine

import "context"

// 置信度上限与阈值
const (
	PatternConfidenceCap   = 0.95
	KnowledgeConfidenceCap = 0.9
	KnowledgeTrigger       = 0.5
	SimilarityThreshold    = 0.5
	TemplateBand           = 0.6
	ActionBand             = 0.7
	ContextConfirmScore    = 0.85
)

// IntentUnknown 无匹配时的意图名
const IntentUnknown = "unknown"

// DetectedIntent 分类结果
// 不单独持久化，附着在触发它的用户消息上
type DetectedIntent struct {
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities,omitempty"`
	Source     string         `json:"source,omitempty"`
}

// ArticleHit 知识文章搜索命中
type ArticleHit struct {
	Intent  string  `json:"intent"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ArticleSearcher 租户知识文章搜索（外部协作方）
type ArticleSearcher interface {
	SearchPublished(ctx context.Context, tenantID, query string, limit int) ([]*ArticleHit, error)
}

// TrainableIntent 可训练意图（名称 + 训练短语）
type TrainableIntent struct {
	Name    string
	Phrases []string
}

// IntentStore 租户意图定义存储（外部协作方）
type IntentStore interface {
	ListActive(ctx context.Context, tenantID string) ([]*TrainableIntent, error)
}

// Generator 生成式兜底后端（黑盒：提示进、文本出）
type Generator interface {
	Generate(ctx context.Context, system string, turns []GenTurn) (string, error)
}

// GenTurn 传给生成后端的历史轮次
type GenTurn struct {
	Role    string
	Content string
}

// LeaveBalance 假期余额
type LeaveBalance struct {
	Annual int `json:"annual"`
	Sick   int `json:"sick"`
	Casual int `json:"casual"`
}

// LeaveRequest 请假申请
type LeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
}

// LeaveApplication 请假申请结果
type LeaveApplication struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PendingLeave 待审批请假
type PendingLeave struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

// LeaveService 假期协作服务
type LeaveService interface {
	Balance(ctx context.Context, tenantID, employeeID string) (*LeaveBalance, error)
	Apply(ctx context.Context, tenantID, employeeID string, req *LeaveRequest) (*LeaveApplication, error)
	Pending(ctx context.Context, tenantID, employeeID string) ([]*PendingLeave, error)
}

// AttendanceRecord 考勤记录
type AttendanceRecord struct {
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Status   string `json:"status"`
}

// AttendanceService 考勤协作服务
type AttendanceService interface {
	CheckIn(ctx context.Context, tenantID, employeeID string) (*AttendanceRecord, error)
	CheckOut(ctx context.Context, tenantID, employeeID string) (*AttendanceRecord, error)
	Today(ctx context.Context, tenantID, employeeID string) (*AttendanceRecord, error)
}

// SalaryInfo 薪资信息
type SalaryInfo struct {
	Gross    float64 `json:"gross"`
	Net      float64 `json:"net"`
	Currency string  `json:"currency"`
}

// Payslip 工资单
type Payslip struct {
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Net   float64 `json:"net"`
	URL   string  `json:"url,omitempty"`
}

// PayrollService 薪资协作服务
type PayrollService interface {
	Salary(ctx context.Context, tenantID, employeeID string) (*SalaryInfo, error)
	Payslip(ctx context.Context, tenantID, employeeID string, month, year int) (*Payslip, error)
}

// EmployeeProfile 员工档案
type EmployeeProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email,omitempty"`
}

// EmployeeService 员工目录协作服务
type EmployeeService interface {
	Profile(ctx context.Context, tenantID, employeeID string) (*EmployeeProfile, error)
	Search(ctx context.Context, tenantID, query string) ([]*EmployeeProfile, error)
}
