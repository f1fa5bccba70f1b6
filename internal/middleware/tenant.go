package middleware

import (
	"github.com/gin-gonic/gin"
)

// TenantMiddleware 租户中间件
// 从 X-Tenant-ID 提取租户并注入上下文，所有数据访问都按租户隔离
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantID := c.GetHeader("X-Tenant-ID"); tenantID != "" {
			c.Set("tenant_id", tenantID)
		}

		if employeeID := c.GetHeader("X-Employee-ID"); employeeID != "" {
			c.Set("employee_id", employeeID)
		}
		c.Next()
	}
}
