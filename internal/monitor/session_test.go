package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisefido-stress/internal/models"
	"wisefido-stress/internal/monitor"
)

func TestSession_SummaryWithHighStressEpisode(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	sessionStart := time.Now().Add(-30 * time.Minute)
	session := monitor.OpenSessionAt(m, sessionStart)

	// 一段连续高压力评估（恒定BPM），随后恢复低压力
	// 高压力段：5次评估（50秒间隔投喂，每10秒一评）
	stressedStart := sessionStart.Add(time.Minute)
	stressed := feedStressed(t, m, 50, stressedStart, time.Second)
	require.Len(t, stressed, 5)

	// 低压力段：3次评估
	// （紧接限流窗口投喂，保证首次低压力评估前窗口已被低压力样本刷满）
	calmStart := stressedStart.Add(45 * time.Second)
	calm := feedCalm(t, m, 30, calmStart, time.Second)
	require.Len(t, calm, 3)

	summary := session.CloseAt(calmStart.Add(time.Minute))

	assert.Equal(t, 8, summary.AssessmentCount)
	// 连续的5次High/VeryHigh只算1个片段
	assert.Equal(t, 1, summary.HighStressEpisodes)
	assert.Equal(t, 5, summary.LevelCounts[models.StressLevelVeryHigh])
	assert.Equal(t, 3, summary.LevelCounts[models.StressLevelLow])
	assert.InDelta(t, 90.0, summary.MaxScore, 1e-9)
	assert.InDelta(t, 24.0, summary.MinScore, 1e-9)
	assert.InDelta(t, (5*90.0+3*24.0)/8.0, summary.AverageScore, 1e-9)
}

func TestSession_MultipleEpisodes(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	session := monitor.OpenSessionAt(m, base)

	// 高→低→高：两个独立的高压力片段
	feedStressed(t, m, 30, base.Add(time.Minute), time.Second)
	feedCalm(t, m, 30, base.Add(3*time.Minute), time.Second)
	feedStressed(t, m, 30, base.Add(5*time.Minute), time.Second)

	summary := session.CloseAt(base.Add(10 * time.Minute))
	assert.Equal(t, 2, summary.HighStressEpisodes)
}

func TestSession_EmptySummary(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 60})
	require.NoError(t, err)

	session := monitor.OpenSession(m)
	summary := session.Close()

	assert.Equal(t, 0, summary.AssessmentCount)
	assert.Equal(t, 0, summary.HighStressEpisodes)
	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Empty(t, summary.LevelCounts)
	assert.False(t, summary.EndTime.Before(summary.StartTime))
}

func TestSession_DoesNotTruncateMonitorHistory(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-10 * time.Minute)
	produced := feedStressed(t, m, 60, start, time.Second)
	require.NotEmpty(t, produced)

	session := monitor.OpenSessionAt(m, start)
	session.CloseAt(time.Now())

	// 会话关闭后Monitor历史保持不变
	assert.Len(t, m.StressTrend(time.Hour), len(produced))
	assert.NotNil(t, m.CurrentStress())
}

func TestSession_OnlyCountsAssessmentsInBounds(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)

	// 会话开始前已有评估
	before := feedStressed(t, m, 30, base, time.Second)
	require.NotEmpty(t, before)

	sessionStart := base.Add(5 * time.Minute)
	session := monitor.OpenSessionAt(m, sessionStart)
	during := feedStressed(t, m, 30, sessionStart, time.Second)
	require.NotEmpty(t, during)

	summary := session.CloseAt(sessionStart.Add(time.Minute))
	assert.Equal(t, len(during), summary.AssessmentCount)
}
