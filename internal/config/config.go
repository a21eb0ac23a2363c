package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN 获取数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config 压力监测服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// 压力引擎配置
	Stress struct {
		// 滚动窗口内的 IBI 数量（最小 2）
		WindowSize int
		// 两次评估之间的最小间隔（秒）
		UpdateInterval int
		// 每个对象保留的评估历史条数
		HistorySize int

		// Monitor 空闲淘汰
		Eviction struct {
			// 超过该时长未收到样本即淘汰（秒）
			MaxIdle int
			// 淘汰巡检间隔（秒）
			Interval int
		}
	}

	// Redis Streams 配置
	Stream struct {
		Input         string // 心率采样输入流
		Assessments   string // 评估结果输出流
		Alerts        string // 高压力告警输出流
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
	}

	// 实时评估缓存配置
	Cache struct {
		KeyPrefix string
		TTL       int // 秒
	}

	// MQTT 接入配置
	Ingest struct {
		Topic string // 如 "wearable/+/heartrate"
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置并校验
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-stress")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Stress.WindowSize = getEnvInt("STRESS_WINDOW_SIZE", 60)
	cfg.Stress.UpdateInterval = getEnvInt("STRESS_UPDATE_INTERVAL", 10)
	cfg.Stress.HistorySize = getEnvInt("STRESS_HISTORY_SIZE", 360)
	cfg.Stress.Eviction.MaxIdle = getEnvInt("STRESS_EVICT_MAX_IDLE", 1800)
	cfg.Stress.Eviction.Interval = getEnvInt("STRESS_EVICT_INTERVAL", 300)

	cfg.Stream.Input = getEnv("STRESS_INPUT_STREAM", "stress:samples:stream")
	cfg.Stream.Assessments = getEnv("STRESS_ASSESSMENTS_STREAM", "stress:assessments:stream")
	cfg.Stream.Alerts = getEnv("STRESS_ALERTS_STREAM", "stress:alerts:stream")
	cfg.Stream.ConsumerGroup = getEnv("STRESS_CONSUMER_GROUP", "stress-engine-group")
	cfg.Stream.ConsumerName = getEnv("STRESS_CONSUMER_NAME", "stress-engine-1")
	cfg.Stream.BatchSize = getEnvInt("STRESS_BATCH_SIZE", 10)

	cfg.Cache.KeyPrefix = getEnv("STRESS_CACHE_PREFIX", "stress:subject:")
	cfg.Cache.TTL = getEnvInt("STRESS_CACHE_TTL", 300)

	cfg.Ingest.Topic = getEnv("STRESS_MQTT_TOPIC", "wearable/+/heartrate")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 校验配置（非法参数在启动时报错，不带病运行）
func (c *Config) validate() error {
	if c.Stress.WindowSize < 2 {
		return fmt.Errorf("invalid STRESS_WINDOW_SIZE %d: must be at least 2", c.Stress.WindowSize)
	}
	if c.Stress.UpdateInterval < 0 {
		return fmt.Errorf("invalid STRESS_UPDATE_INTERVAL %d: must not be negative", c.Stress.UpdateInterval)
	}
	if c.Stress.HistorySize < 1 {
		return fmt.Errorf("invalid STRESS_HISTORY_SIZE %d: must be at least 1", c.Stress.HistorySize)
	}
	if c.Stream.BatchSize < 1 {
		return fmt.Errorf("invalid STRESS_BATCH_SIZE %d: must be at least 1", c.Stream.BatchSize)
	}
	return nil
}

// UpdateIntervalDuration 评估间隔
func (c *Config) UpdateIntervalDuration() time.Duration {
	return time.Duration(c.Stress.UpdateInterval) * time.Second
}

// CacheTTLDuration 缓存 TTL
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
