package models

import (
	"time"
)

// StressLevel 压力等级（1-5，有序）
type StressLevel int

const (
	StressLevelVeryLow  StressLevel = 1
	StressLevelLow      StressLevel = 2
	StressLevelModerate StressLevel = 3
	StressLevelHigh     StressLevel = 4
	StressLevelVeryHigh StressLevel = 5
)

// String 返回等级的英文标识（用于日志和存储）
func (l StressLevel) String() string {
	switch l {
	case StressLevelVeryLow:
		return "very_low"
	case StressLevelLow:
		return "low"
	case StressLevelModerate:
		return "moderate"
	case StressLevelHigh:
		return "high"
	case StressLevelVeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// Label 返回等级的英文显示名称（UI 展示用）
func (l StressLevel) Label() string {
	switch l {
	case StressLevelVeryLow:
		return "Very Low"
	case StressLevelLow:
		return "Low"
	case StressLevelModerate:
		return "Moderate"
	case StressLevelHigh:
		return "High"
	case StressLevelVeryHigh:
		return "Very High"
	default:
		return "Unknown"
	}
}

// LabelZh 返回等级的中文显示名称（UI 展示用）
func (l StressLevel) LabelZh() string {
	switch l {
	case StressLevelVeryLow:
		return "非常低"
	case StressLevelLow:
		return "较低"
	case StressLevelModerate:
		return "中等"
	case StressLevelHigh:
		return "较高"
	case StressLevelVeryHigh:
		return "非常高"
	default:
		return "未知"
	}
}

// Valid 等级是否在合法范围内
func (l StressLevel) Valid() bool {
	return l >= StressLevelVeryLow && l <= StressLevelVeryHigh
}

// StressAssessment 压力评估结果（一次分类的完整快照，生成后不可变）
type StressAssessment struct {
	Level      StressLevel `json:"level" db:"level"`
	Score      float64     `json:"score" db:"score"`           // 0-100，越高压力越大
	Confidence float64     `json:"confidence" db:"confidence"` // 0-1，样本越多越可信
	Metrics    HRVMetrics  `json:"metrics"`
	Reasoning  []string    `json:"reasoning"` // 驱动本次分类的指标说明
	Timestamp  time.Time   `json:"timestamp" db:"timestamp"`
}

// IsHighStress 是否属于高压力（High 或 VeryHigh，触发告警的条件）
func (a *StressAssessment) IsHighStress() bool {
	return a.Level >= StressLevelHigh
}
