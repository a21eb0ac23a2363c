package consumer

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wisefido-stress/internal/config"
	"wisefido-stress/internal/models"
	"wisefido-stress/internal/monitor"
	rediscommon "wisefido-stress/internal/redis"
)

// AssessmentPublisher 评估事件发布器
//
// 作为 monitor.Listener 挂到每个 Monitor 上：
// - 每次评估：更新实时缓存 + 发布到评估结果流
// - 高压力评估：额外构建告警事件发布到告警流
//
// 监听器在采样路径上同步触发，这里只做 Redis 写入（有界耗时）；
// 发布失败记录日志并计入指标，不回传错误中断采样。
type AssessmentPublisher struct {
	config      *config.Config
	redisClient *redis.Client
	cache       *CacheManager
	metrics     *Metrics
	logger      *zap.Logger
}

// NewAssessmentPublisher 创建发布器
func NewAssessmentPublisher(
	cfg *config.Config,
	redisClient *redis.Client,
	cache *CacheManager,
	metrics *Metrics,
	logger *zap.Logger,
) *AssessmentPublisher {
	return &AssessmentPublisher{
		config:      cfg,
		redisClient: redisClient,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListenerFor 为指定对象构建监听器（绑定 tenant/subject 上下文）
func (p *AssessmentPublisher) ListenerFor(tenantID, subjectID string) monitor.Listener {
	return monitor.ListenerFuncs{
		StressChange: func(a models.StressAssessment) {
			p.publishAssessment(tenantID, subjectID, a)
		},
		HighStressAlert: func(a models.StressAssessment) {
			p.publishAlert(tenantID, subjectID, a)
		},
	}
}

func (p *AssessmentPublisher) publishAssessment(tenantID, subjectID string, a models.StressAssessment) {
	ctx := context.Background()

	if err := p.cache.UpdateCurrentAssessment(ctx, tenantID, subjectID, &a); err != nil {
		p.metrics.IncrementFailed("cache_failed")
		p.logger.Error("Failed to update assessment cache",
			zap.String("subject_id", subjectID),
			zap.Error(err),
		)
	}

	event := models.AssessmentEvent{
		TenantID:   tenantID,
		SubjectID:  subjectID,
		Assessment: a,
	}
	if _, err := rediscommon.PublishJSONToStream(ctx, p.redisClient, p.config.Stream.Assessments, event); err != nil {
		p.metrics.IncrementFailed("cache_failed")
		p.logger.Error("Failed to publish assessment event",
			zap.String("subject_id", subjectID),
			zap.String("stream", p.config.Stream.Assessments),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("Published stress assessment",
		zap.String("subject_id", subjectID),
		zap.String("level", a.Level.String()),
		zap.Float64("score", a.Score),
	)
}

func (p *AssessmentPublisher) publishAlert(tenantID, subjectID string, a models.StressAssessment) {
	ctx := context.Background()

	alert := models.HighStressAlert{
		EventID:     uuid.New().String(),
		TenantID:    tenantID,
		SubjectID:   subjectID,
		Level:       a.Level,
		Score:       a.Score,
		Confidence:  a.Confidence,
		TriggeredAt: a.Timestamp,
		Assessment:  a,
	}

	if _, err := rediscommon.PublishJSONToStream(ctx, p.redisClient, p.config.Stream.Alerts, alert); err != nil {
		p.metrics.IncrementFailed("cache_failed")
		p.logger.Error("Failed to publish high stress alert",
			zap.String("subject_id", subjectID),
			zap.String("event_id", alert.EventID),
			zap.Error(err),
		)
		return
	}

	p.metrics.IncrementAlerts()
	p.logger.Warn("High stress alert published",
		zap.String("subject_id", subjectID),
		zap.String("event_id", alert.EventID),
		zap.String("level", a.Level.String()),
		zap.Float64("score", a.Score),
		zap.Float64("confidence", a.Confidence),
	)
}
