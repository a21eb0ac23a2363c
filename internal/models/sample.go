package models

import (
	"time"
)

// HeartRateSample 心率采样点（可穿戴设备上报的瞬时BPM）
type HeartRateSample struct {
	BPM       float64   `json:"bpm"`
	Timestamp time.Time `json:"timestamp"`
}

// SampleMessage 心率采样消息（Redis Streams 传输格式）
//
// 消息来源：
// - wearable MQTT 主题（经 ingest 标准化后发布到 stress:samples:stream）
// - 其他上游服务直接 XADD
//
// Timestamp 为 Unix 秒（与 radar/sleepace 数据流保持一致）
type SampleMessage struct {
	TenantID  string  `json:"tenant_id"`
	SubjectID string  `json:"subject_id"`
	DeviceID  string  `json:"device_id,omitempty"`
	BPM       float64 `json:"bpm"`
	Timestamp int64   `json:"timestamp"`
}
