// Package collaborator 提供下游 HR 协作服务的 HTTP 客户端
// 每个客户端实现 engine 包定义的协作方接口；降级策略在分发器里，不在这里
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zenhr/hr-assistant/internal/config"
)

// Clients 协作服务客户端集合
type Clients struct {
	Leave      *LeaveClient
	Attendance *AttendanceClient
	Payroll    *PayrollClient
	Employee   *EmployeeClient
}

// NewClients 按配置创建所有协作客户端
func NewClients(cfg *config.CollaboratorConfig) *Clients {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Clients{
		Leave:      &LeaveClient{base: baseClient{baseURL: cfg.LeaveURL, http: httpClient}},
		Attendance: &AttendanceClient{base: baseClient{baseURL: cfg.AttendanceURL, http: httpClient}},
		Payroll:    &PayrollClient{base: baseClient{baseURL: cfg.PayrollURL, http: httpClient}},
		Employee:   &EmployeeClient{base: baseClient{baseURL: cfg.EmployeeURL, http: httpClient}},
	}
}

// baseClient JSON-over-HTTP 基础客户端
type baseClient struct {
	baseURL string
	http    *http.Client
}

// get 发送 GET 请求并解码 JSON 响应
func (c *baseClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

// post 发送 JSON POST 请求并解码响应
func (c *baseClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *baseClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// scope 租户 + 员工查询参数
func scope(tenantID, employeeID string) url.Values {
	q := url.Values{}
	q.Set("tenant_id", tenantID)
	if employeeID != "" {
		q.Set("employee_id", employeeID)
	}
	return q
}
