package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zenhr/hr-assistant/internal/service/conversation"
)

// Response 统一响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// success 成功响应
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// badRequest 参数错误响应
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: -1, Message: msg})
}

// errorResponse 根据错误类型返回相应状态码
func errorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversation.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Code: -1, Message: err.Error()})
	case errors.Is(err, conversation.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Code: -1, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Code: -1, Message: err.Error()})
	}
}

// getPagination 获取分页参数
func getPagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return
}

// defaultTenantID 未指明租户时使用的默认租户
const defaultTenantID = "default"

// getTenantID 获取租户ID（由租户中间件注入，缺省 default）
func getTenantID(c *gin.Context) string {
	if id, exists := c.Get("tenant_id"); exists {
		if tenantID, ok := id.(string); ok && tenantID != "" {
			return tenantID
		}
	}
	return defaultTenantID
}

// resolveTenant 租户解析：请求头优先，其次请求体，最后 default
func resolveTenant(c *gin.Context, bodyTenant string) string {
	if id, exists := c.Get("tenant_id"); exists {
		if tenantID, ok := id.(string); ok && tenantID != "" {
			return tenantID
		}
	}
	if bodyTenant != "" {
		return bodyTenant
	}
	return defaultTenantID
}
