package consumer

import (
	"sync"
	"time"
)

// Metrics 消费者监控指标
type Metrics struct {
	mu sync.RWMutex

	// 消息处理统计
	MessagesProcessed int64 // 处理的消息总数
	MessagesSucceeded int64 // 成功处理的消息数
	MessagesFailed    int64 // 处理失败的消息数

	// 评估统计
	AssessmentsProduced int64 // 产生的评估数
	AlertsProduced      int64 // 触发的高压力告警数

	// 错误分类统计
	ErrorsParse         int64 // 解析错误
	ErrorsInvalidSample int64 // 无效样本（bpm <= 0）
	ErrorsPersistFailed int64 // 落库失败
	ErrorsCacheFailed   int64 // 缓存/发布失败

	// 性能指标
	TotalProcessingTime time.Duration
	LastProcessTime     time.Time

	StartTime time.Time
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		MessagesProcessed:   m.MessagesProcessed,
		MessagesSucceeded:   m.MessagesSucceeded,
		MessagesFailed:      m.MessagesFailed,
		AssessmentsProduced: m.AssessmentsProduced,
		AlertsProduced:      m.AlertsProduced,
		ErrorsParse:         m.ErrorsParse,
		ErrorsInvalidSample: m.ErrorsInvalidSample,
		ErrorsPersistFailed: m.ErrorsPersistFailed,
		ErrorsCacheFailed:   m.ErrorsCacheFailed,
		TotalProcessingTime: m.TotalProcessingTime,
		LastProcessTime:     m.LastProcessTime,
		StartTime:           m.StartTime,
	}
}

// IncrementProcessed 增加处理计数
func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesProcessed++
}

// IncrementSucceeded 增加成功计数
func (m *Metrics) IncrementSucceeded(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSucceeded++
	m.TotalProcessingTime += duration
	m.LastProcessTime = time.Now()
}

// IncrementFailed 增加失败计数
func (m *Metrics) IncrementFailed(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFailed++
	switch errorType {
	case "parse":
		m.ErrorsParse++
	case "invalid_sample":
		m.ErrorsInvalidSample++
	case "persist_failed":
		m.ErrorsPersistFailed++
	case "cache_failed":
		m.ErrorsCacheFailed++
	}
}

// IncrementAssessments 增加评估计数
func (m *Metrics) IncrementAssessments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssessmentsProduced++
}

// IncrementAlerts 增加告警计数
func (m *Metrics) IncrementAlerts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsProduced++
}
