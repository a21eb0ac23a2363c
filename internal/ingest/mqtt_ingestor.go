// Package ingest 提供可穿戴设备心率数据的 MQTT 接入
//
// 职责边界：只做接入和标准化，不做任何压力计算——
// 标准化后的采样发布到 Redis Streams，由 consumer 统一评估。
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-stress/internal/config"
	"wisefido-stress/internal/models"
	mqttcommon "wisefido-stress/internal/mqtt"
	rediscommon "wisefido-stress/internal/redis"
	"wisefido-stress/internal/repository"
)

// heartRatePayload 可穿戴设备上报的原始消息
type heartRatePayload struct {
	BPM       float64 `json:"bpm"`
	Timestamp int64   `json:"timestamp,omitempty"` // Unix 秒，缺省用接收时间
}

// MQTTIngestor 心率数据 MQTT 接入器
type MQTTIngestor struct {
	config      *config.Config
	mqttClient  *mqttcommon.Client
	redisClient *redis.Client
	deviceRepo  *repository.DeviceRepository
	logger      *zap.Logger
}

// NewMQTTIngestor 创建接入器
func NewMQTTIngestor(
	cfg *config.Config,
	mqttClient *mqttcommon.Client,
	redisClient *redis.Client,
	deviceRepo *repository.DeviceRepository,
	logger *zap.Logger,
) *MQTTIngestor {
	return &MQTTIngestor{
		config:      cfg,
		mqttClient:  mqttClient,
		redisClient: redisClient,
		deviceRepo:  deviceRepo,
		logger:      logger,
	}
}

// Start 订阅心率主题
func (i *MQTTIngestor) Start(ctx context.Context) error {
	if err := i.mqttClient.Subscribe(i.config.Ingest.Topic, i.config.MQTT.QoS, i.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to heart rate topic: %w", err)
	}

	i.logger.Info("MQTT ingestor started",
		zap.String("topic", i.config.Ingest.Topic),
	)
	return nil
}

// Stop 取消订阅
func (i *MQTTIngestor) Stop(ctx context.Context) error {
	if err := i.mqttClient.Unsubscribe(i.config.Ingest.Topic); err != nil {
		i.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	i.logger.Info("MQTT ingestor stopped")
	return nil
}

// handleMessage 处理单条MQTT消息
//
// 主题格式: wearable/{device_id}/heartrate
// 处理流程：
// 1. 从主题提取设备ID
// 2. 解析原始载荷并做入口校验（bpm > 0）
// 3. 查询设备绑定关系（device → tenant/subject）
// 4. 标准化后发布到采样流
func (i *MQTTIngestor) handleMessage(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	deviceID := parts[1]

	var raw heartRatePayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal heart rate payload: %w", err)
	}

	// 无效样本在接入口过滤，不进入采样流
	if raw.BPM <= 0 {
		i.logger.Warn("Dropping invalid heart rate sample",
			zap.String("device_id", deviceID),
			zap.Float64("bpm", raw.BPM),
		)
		return nil
	}

	binding, err := i.deviceRepo.GetBindingByDeviceID(deviceID)
	if err != nil {
		i.logger.Warn("Device not bound, dropping sample",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return fmt.Errorf("device binding lookup failed: %w", err)
	}

	ts := raw.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}

	sample := models.SampleMessage{
		TenantID:  binding.TenantID,
		SubjectID: binding.SubjectID,
		DeviceID:  deviceID,
		BPM:       raw.BPM,
		Timestamp: ts,
	}

	streamID, err := rediscommon.PublishJSONToStream(context.Background(), i.redisClient, i.config.Stream.Input, sample)
	if err != nil {
		return fmt.Errorf("failed to publish sample to stream: %w", err)
	}

	i.logger.Debug("Published heart rate sample",
		zap.String("device_id", deviceID),
		zap.String("subject_id", binding.SubjectID),
		zap.Float64("bpm", raw.BPM),
		zap.String("stream_id", streamID),
	)
	return nil
}
