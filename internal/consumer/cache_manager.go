package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-stress/internal/config"
	"wisefido-stress/internal/models"
)

// CacheManager Redis 实时评估缓存管理器
//
// 缓存键格式：{prefix}{tenant_id}:{subject_id}:current
// UI/查询侧读取该键获取对象的最新评估，TTL 过期即视为无数据。
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// UpdateCurrentAssessment 更新对象的最新评估缓存
func (c *CacheManager) UpdateCurrentAssessment(ctx context.Context, tenantID, subjectID string, a *models.StressAssessment) error {
	key := c.currentKey(tenantID, subjectID)

	jsonData, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}

	if err := c.redisClient.Set(ctx, key, jsonData, c.config.CacheTTLDuration()).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated current assessment cache",
		zap.String("subject_id", subjectID),
		zap.String("key", key),
	)
	return nil
}

// GetCurrentAssessment 读取对象的最新评估缓存；键不存在时返回 (nil, nil)
func (c *CacheManager) GetCurrentAssessment(ctx context.Context, tenantID, subjectID string) (*models.StressAssessment, error) {
	key := c.currentKey(tenantID, subjectID)

	val, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var a models.StressAssessment
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached assessment: %w", err)
	}
	return &a, nil
}

func (c *CacheManager) currentKey(tenantID, subjectID string) string {
	return fmt.Sprintf("%s%s:%s:current", c.config.Cache.KeyPrefix, tenantID, subjectID)
}
