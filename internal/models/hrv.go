package models

import (
	"time"
)

// HRVMetrics 心率变异性指标快照
//
// 指标说明：
// - SDNN：IBI 序列的总体标准差（ms），反映整体变异性
// - RMSSD：相邻 IBI 差值的均方根（ms），反映短期/副交感神经活动，对急性压力最敏感
// - PNN50：相邻 IBI 差值绝对值超过 50ms 的百分比（0-100）
//
// SampleCount < 2 时三项指标均为 0（数据不足，低置信度，不是错误）
type HRVMetrics struct {
	SDNN        float64   `json:"sdnn" db:"sdnn"`
	RMSSD       float64   `json:"rmssd" db:"rmssd"`
	PNN50       float64   `json:"pnn50" db:"pnn50"`
	SampleCount int       `json:"sample_count" db:"sample_count"`
	ComputedAt  time.Time `json:"computed_at" db:"computed_at"`
}

// Reliable 指标是否基于足够样本计算（< 2 个 IBI 无法计算变异性）
func (m *HRVMetrics) Reliable() bool {
	return m.SampleCount >= 2
}
