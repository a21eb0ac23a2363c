package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisefido-stress/internal/models"
	"wisefido-stress/internal/monitor"
)

// feedCalm 投喂低压力心率序列（58/66交替，RMSSD大 → 低压力档）
func feedCalm(t *testing.T, m *monitor.Monitor, n int, start time.Time, step time.Duration) []*models.StressAssessment {
	t.Helper()
	var produced []*models.StressAssessment
	for i := 0; i < n; i++ {
		bpm := 58.0
		if i%2 == 1 {
			bpm = 66.0
		}
		a, err := m.AddHeartRate(bpm, start.Add(time.Duration(i)*step))
		require.NoError(t, err)
		if a != nil {
			produced = append(produced, a)
		}
	}
	return produced
}

// feedStressed 投喂高压力心率序列（恒定BPM → 零变异 → 最高压力档）
func feedStressed(t *testing.T, m *monitor.Monitor, n int, start time.Time, step time.Duration) []*models.StressAssessment {
	t.Helper()
	var produced []*models.StressAssessment
	for i := 0; i < n; i++ {
		a, err := m.AddHeartRate(95, start.Add(time.Duration(i)*step))
		require.NoError(t, err)
		if a != nil {
			produced = append(produced, a)
		}
	}
	return produced
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := monitor.New(monitor.Config{WindowSize: 1})
	require.ErrorIs(t, err, monitor.ErrWindowTooSmall)

	_, err = monitor.New(monitor.Config{WindowSize: 10, UpdateInterval: -time.Second})
	require.Error(t, err)

	_, err = monitor.New(monitor.Config{WindowSize: 10, HistorySize: -1})
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	m, err := monitor.New(monitor.Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.WindowLen())
	assert.Nil(t, m.CurrentStress())
}

func TestMonitor_BuffersUntilWindowFull(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 10, UpdateInterval: time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-time.Minute)

	// 前9个样本不产生评估
	for i := 0; i < 9; i++ {
		a, err := m.AddHeartRate(60, start.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.Nil(t, a)
	}
	assert.Nil(t, m.CurrentStress())

	// 第10个样本：窗口满，产生首次评估
	a, err := m.AddHeartRate(60, start.Add(9*time.Second))
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 10, a.Metrics.SampleCount)

	current := m.CurrentStress()
	require.NotNil(t, current)
	assert.Equal(t, a.Level, current.Level)
}

func TestMonitor_UpdateIntervalThrottling(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-2 * time.Minute)

	// 每秒一个样本：窗口在第5个满，之后被限流，
	// 直到距首次评估满10秒才再次评估
	produced := feedStressed(t, m, 20, start, time.Second)

	// t=4s 首评，t=14s 第二次 → 20秒内共2次
	require.Len(t, produced, 2)
	assert.Equal(t, 10*time.Second, produced[1].Timestamp.Sub(produced[0].Timestamp))
}

func TestMonitor_InvalidSampleRejected(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5})
	require.NoError(t, err)

	_, err = m.AddHeartRate(0, time.Now())
	require.ErrorIs(t, err, monitor.ErrInvalidSample)

	_, err = m.AddHeartRate(-80, time.Now())
	require.ErrorIs(t, err, monitor.ErrInvalidSample)

	assert.Equal(t, 0, m.WindowLen())
}

func TestMonitor_LowVariabilityClassifiesHighStress(t *testing.T) {
	// 60个完全相同的BPM → 零变异 → 最高压力档，置信度接近1
	m, err := monitor.New(monitor.Config{WindowSize: 60, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-2 * time.Minute)
	produced := feedStressed(t, m, 60, start, time.Second)

	require.Len(t, produced, 1)
	assert.Equal(t, models.StressLevelVeryHigh, produced[0].Level)
	assert.InDelta(t, 1.0, produced[0].Confidence, 1e-9)
}

func TestMonitor_HighVariabilityClassifiesLowStress(t *testing.T) {
	// 58/66交替 → RMSSD/pNN50进入低压力档（阈值带方向验证）
	m, err := monitor.New(monitor.Config{WindowSize: 60, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-2 * time.Minute)
	produced := feedCalm(t, m, 60, start, time.Second)

	require.Len(t, produced, 1)
	assert.Contains(t, []models.StressLevel{models.StressLevelVeryLow, models.StressLevelLow}, produced[0].Level)
	assert.InDelta(t, 1.0, produced[0].Confidence, 1e-9)
}

func TestMonitor_StressTrendAndAverage(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-5 * time.Minute)
	produced := feedStressed(t, m, 120, start, time.Second)
	require.NotEmpty(t, produced)

	trend := m.StressTrend(time.Hour)
	require.Len(t, trend, len(produced))

	// 升序
	for i := 1; i < len(trend); i++ {
		assert.True(t, trend[i].Timestamp.After(trend[i-1].Timestamp))
	}

	avg, ok := m.AverageStressScore(time.Hour)
	require.True(t, ok)
	assert.InDelta(t, 90.0, avg, 1e-9)

	// 空窗口
	_, ok = m.AverageStressScore(time.Nanosecond)
	assert.False(t, ok)
}

func TestMonitor_IsStressIncreasing(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 10, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-10 * time.Minute)

	// 前半段低压力
	calm := feedCalm(t, m, 120, start, time.Second)
	require.NotEmpty(t, calm)

	// 后半段高压力（恒定BPM冲掉窗口里的变异）
	stressed := feedStressed(t, m, 120, start.Add(2*time.Minute), time.Second)
	require.NotEmpty(t, stressed)

	assert.True(t, m.IsStressIncreasing(time.Hour))

	// 评估不足2条时无法判断
	fresh, err := monitor.New(monitor.Config{WindowSize: 10})
	require.NoError(t, err)
	assert.False(t, fresh.IsStressIncreasing(time.Hour))
}

func TestMonitor_Reset(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: time.Second})
	require.NoError(t, err)

	start := time.Now().Add(-time.Minute)
	produced := feedStressed(t, m, 30, start, time.Second)
	require.NotEmpty(t, produced)

	m.Reset()

	assert.Nil(t, m.CurrentStress())
	assert.Empty(t, m.StressTrend(time.Hour))
	assert.Equal(t, 0, m.WindowLen())
	assert.True(t, m.LastSampleAt().IsZero())

	// 重置后重新缓冲
	a, err := m.AddHeartRate(60, time.Now())
	require.NoError(t, err)
	assert.Nil(t, a)
}

type recordingListener struct {
	changes []models.StressAssessment
	alerts  []models.StressAssessment
}

func (l *recordingListener) OnStressChange(a models.StressAssessment) {
	l.changes = append(l.changes, a)
}

func (l *recordingListener) OnHighStressAlert(a models.StressAssessment) {
	l.alerts = append(l.alerts, a)
}

func TestMonitor_ListenerEvents(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 5, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	listener := &recordingListener{}
	m.Subscribe(listener)

	start := time.Now().Add(-2 * time.Minute)

	// 恒定BPM → VeryHigh：change和alert都触发
	produced := feedStressed(t, m, 20, start, time.Second)
	require.Len(t, produced, 2)

	assert.Len(t, listener.changes, 2)
	assert.Len(t, listener.alerts, 2)
	assert.Equal(t, models.StressLevelVeryHigh, listener.alerts[0].Level)
}

func TestMonitor_ListenerNoAlertOnLowStress(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 10, UpdateInterval: 10 * time.Second})
	require.NoError(t, err)

	listener := &recordingListener{}
	m.Subscribe(listener)

	start := time.Now().Add(-time.Minute)
	produced := feedCalm(t, m, 30, start, time.Second)
	require.NotEmpty(t, produced)

	assert.NotEmpty(t, listener.changes)
	assert.Empty(t, listener.alerts)
}

func TestMonitor_ListenerFuncsNilSafe(t *testing.T) {
	m, err := monitor.New(monitor.Config{WindowSize: 2, UpdateInterval: time.Second})
	require.NoError(t, err)

	// 两个回调都为nil也不应panic
	m.Subscribe(monitor.ListenerFuncs{})

	start := time.Now().Add(-time.Minute)
	_, err = m.AddHeartRate(80, start)
	require.NoError(t, err)
	a, err := m.AddHeartRate(80, start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestMonitor_HistoryRetentionBounded(t *testing.T) {
	m, err := monitor.New(monitor.Config{
		WindowSize:     2,
		UpdateInterval: time.Second,
		HistorySize:    3,
	})
	require.NoError(t, err)

	start := time.Now().Add(-time.Hour)
	produced := feedStressed(t, m, 10, start, time.Second)
	require.Greater(t, len(produced), 3)

	// 历史被固定容量截断，只保留最新3条
	trend := m.StressTrend(2 * time.Hour)
	require.Len(t, trend, 3)
	assert.Equal(t, produced[len(produced)-1].Timestamp, trend[2].Timestamp)
}
