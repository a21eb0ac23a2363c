package monitor

import (
	"time"

	"wisefido-stress/internal/models"
)

// Session 有界监测会话（一次训练/一晚睡眠等有始有终的活动）
//
// 会话只是底层 Monitor 历史上的一个只读时间切片：
// - 打开时记录 start_time，关闭时记录 end_time 并产出汇总
// - 不截断、不重置 Monitor 的持续历史
type Session struct {
	monitor   *Monitor
	startTime time.Time
	endTime   time.Time
	closed    bool
}

// Summary 会话汇总统计
type Summary struct {
	StartTime       time.Time                  `json:"start_time"`
	EndTime         time.Time                  `json:"end_time"`
	AssessmentCount int                        `json:"assessment_count"`
	AverageScore    float64                    `json:"average_score"`
	MinScore        float64                    `json:"min_score"`
	MaxScore        float64                    `json:"max_score"`
	LevelCounts     map[models.StressLevel]int `json:"level_counts"`
	// HighStressEpisodes 高压力片段数：连续的 High/VeryHigh 评估
	// 算作一个片段（按段计数，不按评估条数计数）
	HighStressEpisodes int `json:"high_stress_episodes"`
}

// OpenSession 在指定 Monitor 上打开一个会话
func OpenSession(m *Monitor) *Session {
	return &Session{
		monitor:   m,
		startTime: time.Now(),
	}
}

// OpenSessionAt 以指定起始时间打开会话（回放/测试用）
func OpenSessionAt(m *Monitor, start time.Time) *Session {
	return &Session{
		monitor:   m,
		startTime: start,
	}
}

// StartTime 会话开始时间
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Close 关闭会话并计算汇总
//
// 幂等：重复调用返回首次关闭时计算的结果等价的汇总
// （基于相同的 [start, end] 区间重新统计）。
func (s *Session) Close() Summary {
	if !s.closed {
		s.endTime = time.Now()
		s.closed = true
	}
	return s.summarize(s.monitor.AssessmentsBetween(s.startTime, s.endTime))
}

// CloseAt 以指定结束时间关闭会话（回放/测试用）
func (s *Session) CloseAt(end time.Time) Summary {
	if !s.closed {
		s.endTime = end
		s.closed = true
	}
	return s.summarize(s.monitor.AssessmentsBetween(s.startTime, s.endTime))
}

func (s *Session) summarize(assessments []models.StressAssessment) Summary {
	summary := Summary{
		StartTime:       s.startTime,
		EndTime:         s.endTime,
		AssessmentCount: len(assessments),
		LevelCounts:     make(map[models.StressLevel]int),
	}

	if len(assessments) == 0 {
		return summary
	}

	var sum float64
	summary.MinScore = assessments[0].Score
	summary.MaxScore = assessments[0].Score
	inEpisode := false

	for _, a := range assessments {
		sum += a.Score
		if a.Score < summary.MinScore {
			summary.MinScore = a.Score
		}
		if a.Score > summary.MaxScore {
			summary.MaxScore = a.Score
		}
		summary.LevelCounts[a.Level]++

		// 连续的高压力评估只计一个片段
		if a.IsHighStress() {
			if !inEpisode {
				summary.HighStressEpisodes++
				inEpisode = true
			}
		} else {
			inEpisode = false
		}
	}

	summary.AverageScore = sum / float64(len(assessments))
	return summary
}
