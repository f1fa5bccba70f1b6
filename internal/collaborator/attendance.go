package collaborator

import (
	"context"

	"github.com/zenhr/hr-assistant/internal/engine"
)

// AttendanceClient 考勤服务客户端
type AttendanceClient struct {
	base baseClient
}

// CheckIn 签到
func (c *AttendanceClient) CheckIn(ctx context.Context, tenantID, employeeID string) (*engine.AttendanceRecord, error) {
	body := map[string]interface{}{"tenant_id": tenantID, "employee_id": employeeID}
	var rec engine.AttendanceRecord
	if err := c.base.post(ctx, "/api/v1/attendance/check-in", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CheckOut 签退
func (c *AttendanceClient) CheckOut(ctx context.Context, tenantID, employeeID string) (*engine.AttendanceRecord, error) {
	body := map[string]interface{}{"tenant_id": tenantID, "employee_id": employeeID}
	var rec engine.AttendanceRecord
	if err := c.base.post(ctx, "/api/v1/attendance/check-out", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Today 查询当日考勤
func (c *AttendanceClient) Today(ctx context.Context, tenantID, employeeID string) (*engine.AttendanceRecord, error) {
	var rec engine.AttendanceRecord
	if err := c.base.get(ctx, "/api/v1/attendance/today", scope(tenantID, employeeID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
