package collaborator

import (
	"context"

	"github.com/zenhr/hr-assistant/internal/engine"
)

// EmployeeClient 员工目录服务客户端
type EmployeeClient struct {
	base baseClient
}

// Profile 查询员工档案
func (c *EmployeeClient) Profile(ctx context.Context, tenantID, employeeID string) (*engine.EmployeeProfile, error) {
	var profile engine.EmployeeProfile
	if err := c.base.get(ctx, "/api/v1/employees/profile", scope(tenantID, employeeID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Search 按关键词搜索员工
func (c *EmployeeClient) Search(ctx context.Context, tenantID, query string) ([]*engine.EmployeeProfile, error) {
	q := scope(tenantID, "")
	q.Set("q", query)

	var results []*engine.EmployeeProfile
	if err := c.base.get(ctx, "/api/v1/employees/search", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}
