package collaborator

import (
	"context"
	"strconv"

	"github.com/zenhr/hr-assistant/internal/engine"
)

// PayrollClient 薪资服务客户端
type PayrollClient struct {
	base baseClient
}

// Salary 查询薪资信息
func (c *PayrollClient) Salary(ctx context.Context, tenantID, employeeID string) (*engine.SalaryInfo, error) {
	var salary engine.SalaryInfo
	if err := c.base.get(ctx, "/api/v1/payroll/salary", scope(tenantID, employeeID), &salary); err != nil {
		return nil, err
	}
	return &salary, nil
}

// Payslip 获取指定月份工资单
func (c *PayrollClient) Payslip(ctx context.Context, tenantID, employeeID string, month, year int) (*engine.Payslip, error) {
	q := scope(tenantID, employeeID)
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var slip engine.Payslip
	if err := c.base.get(ctx, "/api/v1/payroll/payslip", q, &slip); err != nil {
		return nil, err
	}
	return &slip, nil
}
