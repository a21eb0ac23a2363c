// Package consumer 提供心率采样流的消费与评估结果的分发
//
// 处理流程：
// 1. 通过消费者组从 stress:samples:stream 批量读取采样消息
// 2. 按 tenant+subject 路由到对应的 Monitor（注册表显式创建）
// 3. Monitor 产生评估时：落库 + 监听器发布（缓存/评估流/告警流）
//
// 单个消费者内消息按顺序处理，保证同一对象的采样串行进入 Monitor。
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-stress/internal/config"
	"wisefido-stress/internal/models"
	"wisefido-stress/internal/monitor"
	rediscommon "wisefido-stress/internal/redis"
	"wisefido-stress/internal/repository"
)

// StreamConsumer 心率采样 Redis Streams 消费者
type StreamConsumer struct {
	config         *config.Config
	redisClient    *redis.Client
	registry       *monitor.Registry
	publisher      *AssessmentPublisher
	assessmentRepo *repository.AssessmentRepository
	logger         *zap.Logger
	metrics        *Metrics
}

// NewStreamConsumer 创建 Streams 消费者
func NewStreamConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	registry *monitor.Registry,
	publisher *AssessmentPublisher,
	assessmentRepo *repository.AssessmentRepository,
	metrics *Metrics,
	logger *zap.Logger,
) *StreamConsumer {
	return &StreamConsumer{
		config:         cfg,
		redisClient:    redisClient,
		registry:       registry,
		publisher:      publisher,
		assessmentRepo: assessmentRepo,
		logger:         logger,
		metrics:        metrics,
	}
}

// Start 启动消费者（阻塞直到上下文取消）
func (c *StreamConsumer) Start(ctx context.Context) error {
	stream := c.config.Stream.Input
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, stream, c.config.Stream.ConsumerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}

	c.logger.Info("Stream consumer started",
		zap.String("consumer_group", c.config.Stream.ConsumerGroup),
		zap.String("consumer_name", c.config.Stream.ConsumerName),
		zap.String("stream", stream),
	)

	metricsCtx, metricsCancel := context.WithCancel(ctx)
	defer metricsCancel()
	go c.reportMetrics(metricsCtx)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeStream(ctx, stream); err != nil {
				c.logger.Error("Failed to consume stream",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				// 指数退避后重试
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consumeStream 读取并处理一批消息
func (c *StreamConsumer) consumeStream(ctx context.Context, stream string) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		stream,
		c.config.Stream.ConsumerGroup,
		c.config.Stream.ConsumerName,
		int64(c.config.Stream.BatchSize),
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		c.metrics.IncrementProcessed()
		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("Failed to process sample message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
			// 继续处理下一条消息，不中断
		}
		// 无论成败都 ACK：采样消息重放没有意义（窗口语义是最新N个样本）
		if err := rediscommon.AckMessage(ctx, c.redisClient, stream, c.config.Stream.ConsumerGroup, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processMessage 处理单条采样消息
func (c *StreamConsumer) processMessage(ctx context.Context, msg rediscommon.StreamMessage) error {
	startTime := time.Now()

	sample, err := c.parseSample(msg)
	if err != nil {
		c.metrics.IncrementFailed("parse")
		return err
	}

	if sample.BPM <= 0 {
		c.metrics.IncrementFailed("invalid_sample")
		return fmt.Errorf("invalid sample: bpm=%f subject=%s", sample.BPM, sample.SubjectID)
	}

	ts := time.Unix(sample.Timestamp, 0)
	if sample.Timestamp == 0 {
		ts = time.Now()
	}

	m, err := c.monitorFor(sample.TenantID, sample.SubjectID)
	if err != nil {
		c.metrics.IncrementFailed("parse")
		return err
	}

	assessment, err := m.AddHeartRate(sample.BPM, ts)
	if err != nil {
		c.metrics.IncrementFailed("invalid_sample")
		return fmt.Errorf("failed to add heart rate: %w", err)
	}

	// assessment 为 nil 是正常情况：窗口缓冲中或评估被限流
	if assessment != nil {
		c.metrics.IncrementAssessments()
		if err := c.assessmentRepo.Insert(sample.TenantID, sample.SubjectID, assessment); err != nil {
			c.metrics.IncrementFailed("persist_failed")
			c.logger.Error("Failed to persist assessment",
				zap.String("subject_id", sample.SubjectID),
				zap.Error(err),
			)
			// 缓存和事件流已经发布，落库失败不影响实时链路
		}
	}

	c.metrics.IncrementSucceeded(time.Since(startTime))
	return nil
}

// parseSample 从流消息中解析采样数据
func (c *StreamConsumer) parseSample(msg rediscommon.StreamMessage) (*models.SampleMessage, error) {
	val, ok := msg.Values["data"]
	if !ok {
		return nil, fmt.Errorf("missing data field in message %s", msg.ID)
	}
	dataStr, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("invalid data format in message %s", msg.ID)
	}

	var sample models.SampleMessage
	if err := json.Unmarshal([]byte(dataStr), &sample); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
	}

	if sample.TenantID == "" || sample.SubjectID == "" {
		return nil, fmt.Errorf("sample missing tenant_id or subject_id in message %s", msg.ID)
	}

	return &sample, nil
}

// monitorFor 获取或创建对象的 Monitor
//
// 消费入口是本服务唯一的 Monitor 创建方；新建时挂载发布监听器。
func (c *StreamConsumer) monitorFor(tenantID, subjectID string) (*monitor.Monitor, error) {
	key := monitor.Key(tenantID, subjectID)

	if m, ok := c.registry.Get(key); ok {
		return m, nil
	}

	m, err := c.registry.Create(key)
	if err != nil {
		if err == monitor.ErrMonitorExists {
			// 与淘汰协程竞争时的兜底
			if existing, ok := c.registry.Get(key); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create monitor for %s: %w", key, err)
	}

	m.Subscribe(c.publisher.ListenerFor(tenantID, subjectID))
	c.logger.Info("Monitor created",
		zap.String("tenant_id", tenantID),
		zap.String("subject_id", subjectID),
	)
	return m, nil
}

// reportMetrics 定期报告指标（每60秒）
func (c *StreamConsumer) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := c.metrics.GetSnapshot()
			uptime := time.Since(snapshot.StartTime)

			var avgProcessingTime time.Duration
			if snapshot.MessagesSucceeded > 0 {
				avgProcessingTime = snapshot.TotalProcessingTime / time.Duration(snapshot.MessagesSucceeded)
			}

			c.logger.Info("Consumer metrics",
				zap.Duration("uptime", uptime),
				zap.Int64("messages_processed", snapshot.MessagesProcessed),
				zap.Int64("messages_succeeded", snapshot.MessagesSucceeded),
				zap.Int64("messages_failed", snapshot.MessagesFailed),
				zap.Int64("assessments_produced", snapshot.AssessmentsProduced),
				zap.Int64("alerts_produced", snapshot.AlertsProduced),
				zap.Int64("errors_parse", snapshot.ErrorsParse),
				zap.Int64("errors_invalid_sample", snapshot.ErrorsInvalidSample),
				zap.Int64("errors_persist", snapshot.ErrorsPersistFailed),
				zap.Int64("errors_cache", snapshot.ErrorsCacheFailed),
				zap.Duration("avg_processing_time", avgProcessingTime),
				zap.Int("active_monitors", c.registry.Len()),
			)
		}
	}
}
