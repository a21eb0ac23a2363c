package models

import (
	"time"
)

// HighStressAlert 高压力告警事件（发布到 stress:alerts:stream）
//
// 触发条件：评估等级为 High 或 VeryHigh
// 消费方：报警服务 / 通知服务（本服务只负责发布，不负责处置闭环）
type HighStressAlert struct {
	EventID     string           `json:"event_id"`
	TenantID    string           `json:"tenant_id"`
	SubjectID   string           `json:"subject_id"`
	Level       StressLevel      `json:"level"`
	Score       float64          `json:"score"`
	Confidence  float64          `json:"confidence"`
	TriggeredAt time.Time        `json:"triggered_at"`
	Assessment  StressAssessment `json:"assessment"`
}

// AssessmentEvent 评估结果事件（发布到 stress:assessments:stream）
type AssessmentEvent struct {
	TenantID   string           `json:"tenant_id"`
	SubjectID  string           `json:"subject_id"`
	Assessment StressAssessment `json:"assessment"`
}
