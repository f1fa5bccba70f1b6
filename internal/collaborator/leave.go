package collaborator

import (
	"context"

	"github.com/zenhr/hr-assistant/internal/engine"
)

// LeaveClient 假期服务客户端
type LeaveClient struct {
	base baseClient
}

// Balance 查询假期余额
func (c *LeaveClient) Balance(ctx context.Context, tenantID, employeeID string) (*engine.LeaveBalance, error) {
	var balance engine.LeaveBalance
	if err := c.base.get(ctx, "/api/v1/leaves/balance", scope(tenantID, employeeID), &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// Apply 提交请假申请
func (c *LeaveClient) Apply(ctx context.Context, tenantID, employeeID string, req *engine.LeaveRequest) (*engine.LeaveApplication, error) {
	body := map[string]interface{}{
		"tenant_id":   tenantID,
		"employee_id": employeeID,
		"type":        req.Type,
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
		"reason":      req.Reason,
	}
	var app engine.LeaveApplication
	if err := c.base.post(ctx, "/api/v1/leaves", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Pending 查询待审批请假
func (c *LeaveClient) Pending(ctx context.Context, tenantID, employeeID string) ([]*engine.PendingLeave, error) {
	var pending []*engine.PendingLeave
	if err := c.base.get(ctx, "/api/v1/leaves/pending", scope(tenantID, employeeID), &pending); err != nil {
		return nil, err
	}
	return pending, nil
}
