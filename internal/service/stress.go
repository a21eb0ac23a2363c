package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-stress/internal/config"
	"wisefido-stress/internal/consumer"
	"wisefido-stress/internal/database"
	"wisefido-stress/internal/ingest"
	"wisefido-stress/internal/monitor"
	mqttcommon "wisefido-stress/internal/mqtt"
	rediscommon "wisefido-stress/internal/redis"
	"wisefido-stress/internal/repository"
)

// StressService 压力监测服务
type StressService struct {
	config         *config.Config
	logger         *zap.Logger
	db             *sql.DB
	redisClient    *redis.Client
	mqttClient     *mqttcommon.Client
	registry       *monitor.Registry
	streamConsumer *consumer.StreamConsumer
	ingestor       *ingest.MQTTIngestor
}

// NewStressService 创建压力监测服务
func NewStressService(cfg *config.Config, logger *zap.Logger) (*StressService, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 初始化 Redis
	redisClient := rediscommon.NewClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 初始化 MQTT
	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// 创建 Repository
	assessmentRepo := repository.NewAssessmentRepository(db, logger)
	deviceRepo := repository.NewDeviceRepository(db, logger)

	// 创建 Monitor 注册表（所有对象共用同一配置模板）
	registry := monitor.NewRegistry(monitor.Config{
		WindowSize:     cfg.Stress.WindowSize,
		UpdateInterval: cfg.UpdateIntervalDuration(),
		HistorySize:    cfg.Stress.HistorySize,
	})

	// 创建消费与分发链路
	metrics := &consumer.Metrics{StartTime: time.Now()}
	cache := consumer.NewCacheManager(cfg, redisClient, logger)
	publisher := consumer.NewAssessmentPublisher(cfg, redisClient, cache, metrics, logger)
	streamConsumer := consumer.NewStreamConsumer(cfg, redisClient, registry, publisher, assessmentRepo, metrics, logger)

	// 创建 MQTT 接入器
	ingestor := ingest.NewMQTTIngestor(cfg, mqttClient, redisClient, deviceRepo, logger)

	return &StressService{
		config:         cfg,
		logger:         logger,
		db:             db,
		redisClient:    redisClient,
		mqttClient:     mqttClient,
		registry:       registry,
		streamConsumer: streamConsumer,
		ingestor:       ingestor,
	}, nil
}

// Start 启动服务（阻塞直到上下文取消）
func (s *StressService) Start(ctx context.Context) error {
	s.logger.Info("Starting stress service components",
		zap.Int("window_size", s.config.Stress.WindowSize),
		zap.Int("update_interval_sec", s.config.Stress.UpdateInterval),
		zap.String("input_stream", s.config.Stream.Input),
	)

	// 启动 MQTT 接入
	if err := s.ingestor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MQTT ingestor: %w", err)
	}

	// 启动空闲 Monitor 淘汰巡检
	go s.startEvictionLoop(ctx)

	// 启动采样流消费（阻塞）
	return s.streamConsumer.Start(ctx)
}

// Stop 停止服务并释放资源
func (s *StressService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping stress service")

	if s.ingestor != nil {
		if err := s.ingestor.Stop(ctx); err != nil {
			s.logger.Error("Error stopping ingestor", zap.Error(err))
		}
	}

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	if s.redisClient != nil {
		rediscommon.Close(s.redisClient)
	}

	if s.db != nil {
		database.Close(s.db)
	}

	s.logger.Info("Stress service stopped")
	return nil
}

// startEvictionLoop 定期淘汰长时间无样本的 Monitor，避免无界增长
func (s *StressService) startEvictionLoop(ctx context.Context) {
	maxIdle := time.Duration(s.config.Stress.Eviction.MaxIdle) * time.Second
	interval := time.Duration(s.config.Stress.Eviction.Interval) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Monitor eviction loop started",
		zap.Duration("max_idle", maxIdle),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.registry.EvictIdle(maxIdle); evicted > 0 {
				s.logger.Info("Evicted idle monitors",
					zap.Int("evicted", evicted),
					zap.Int("remaining", s.registry.Len()),
				)
			}
		}
	}
}
