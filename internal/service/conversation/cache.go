package conversation

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 上下文快照在 Redis 中的过期时间（24小时）
	contextTTL = 24 * time.Hour
	// Redis key 前缀
	contextKeyPrefix = "conversation:ctx:"
)

// ContextSnapshot 会话上下文快照，供上下文消解快速读取上一轮意图
type ContextSnapshot struct {
	CurrentIntent string `json:"current_intent"`
	LastTopic     string `json:"last_topic,omitempty"`
}

// ContextCache 基于 Redis 的上下文快照缓存
// Redis 不可用时静默失效，调用方回落到对话文档
type ContextCache struct {
	redis *redis.Client
}

// NewContextCache 创建上下文缓存
func NewContextCache(redisClient *redis.Client) *ContextCache {
	return &ContextCache{redis: redisClient}
}

// Get 读取快照，未命中或出错返回 nil
func (c *ContextCache) Get(ctx context.Context, tenantID, sessionKey string) *ContextSnapshot {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, contextKey(tenantID, sessionKey)).Result()
	if err != nil {
		return nil
	}
	var snapshot ContextSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

// Set 写入快照；失败只记警告，不影响主流程
func (c *ContextCache) Set(ctx context.Context, tenantID, sessionKey string, snapshot *ContextSnapshot) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, contextKey(tenantID, sessionKey), data, contextTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache conversation context: %v", err)
	}
}

// Delete 删除快照
func (c *ContextCache) Delete(ctx context.Context, tenantID, sessionKey string) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, contextKey(tenantID, sessionKey)).Err(); err != nil {
		log.Printf("Warning: failed to delete conversation context: %v", err)
	}
}

func contextKey(tenantID, sessionKey string) string {
	return contextKeyPrefix + tenantID + ":" + sessionKey
}
