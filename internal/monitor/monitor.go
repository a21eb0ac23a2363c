// Package monitor 提供单个对象的实时压力监测
//
// 数据流（单向）：
//   心率样本 → 滚动HRV窗口 → 压力分类 → 有限历史 + 事件通知
//
// 每个被监测对象持有一个独立的 Monitor 实例（无跨实例共享状态），
// 实例内部用互斥锁串行化采样写入与趋势查询。
package monitor

import (
	"sync"
	"time"

	"wisefido-stress/internal/hrv"
	"wisefido-stress/internal/models"
	"wisefido-stress/internal/stress"
)

// 默认配置
const (
	DefaultUpdateInterval = 10 * time.Second
	DefaultHistorySize    = 360 // 约1小时（按10秒评估间隔）
)

// ErrInvalidSample 见 hrv.ErrInvalidSample（统一入口错误）
var ErrInvalidSample = hrv.ErrInvalidSample

// ErrWindowTooSmall 见 hrv.ErrWindowTooSmall（配置错误）
var ErrWindowTooSmall = hrv.ErrWindowTooSmall

// Config 监测器配置
type Config struct {
	// WindowSize 滚动窗口内的 IBI 数量（最小 2，默认 60）
	WindowSize int

	// UpdateInterval 两次评估之间的最小间隔（限流，默认 10s）
	//
	// 限流是为了约束回调/计算频率，不是 HRV 数学上的要求。
	UpdateInterval time.Duration

	// HistorySize 评估历史保留条数（环形缓冲区容量，默认 360）
	HistorySize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		WindowSize:     hrv.DefaultWindowSize,
		UpdateInterval: DefaultUpdateInterval,
		HistorySize:    DefaultHistorySize,
	}
}

// Listener 压力事件监听器
//
// 两个回调都在 AddHeartRate 的调用线程上同步触发；
// 监听器内的慢操作（通知、落库等）由宿主自行异步化，
// 不要阻塞采样路径。
type Listener interface {
	// OnStressChange 每次产生新评估时触发（无条件）
	OnStressChange(a models.StressAssessment)
	// OnHighStressAlert 评估等级为 High/VeryHigh 时额外触发
	OnHighStressAlert(a models.StressAssessment)
}

// ListenerFuncs 函数式监听器适配（两个字段均可为 nil）
type ListenerFuncs struct {
	StressChange    func(a models.StressAssessment)
	HighStressAlert func(a models.StressAssessment)
}

func (f ListenerFuncs) OnStressChange(a models.StressAssessment) {
	if f.StressChange != nil {
		f.StressChange(a)
	}
}

func (f ListenerFuncs) OnHighStressAlert(a models.StressAssessment) {
	if f.HighStressAlert != nil {
		f.HighStressAlert(a)
	}
}

// Monitor 单对象实时压力监测器
//
// 状态机：Idle（无样本）→ Buffering（窗口未满）→ Active（持续输出评估）。
// 没有终止状态，宿主停止投喂 + 丢弃实例即结束监测。
type Monitor struct {
	mu sync.Mutex

	calc           *hrv.RollingCalculator
	updateInterval time.Duration
	lastEvalAt     time.Time
	lastSampleAt   time.Time
	history        *assessmentRing
	listeners      []Listener
}

// New 创建监测器
//
// 配置非法时返回错误（WindowSize < 2 / UpdateInterval < 0 / HistorySize < 1）。
// 零值字段使用默认值。
func New(cfg Config) (*Monitor, error) {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = hrv.DefaultWindowSize
	}
	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.UpdateInterval < 0 || cfg.HistorySize < 1 {
		return nil, ErrWindowTooSmall
	}

	calc, err := hrv.NewRollingCalculator(cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		calc:           calc,
		updateInterval: cfg.UpdateInterval,
		history:        newAssessmentRing(cfg.HistorySize),
	}, nil
}

// Subscribe 注册事件监听器（非并发安全，应在投喂开始前完成注册）
func (m *Monitor) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// AddHeartRate 投喂一个心率样本
//
// 返回值：
// - (nil, nil)：窗口仍在缓冲，或距上次评估未超过 UpdateInterval（限流）
// - (*StressAssessment, nil)：产生了新评估（已记入历史并触发监听器）
// - (nil, ErrInvalidSample)：bpm <= 0
//
// 时间戳要求单调不减（引擎不重排序），限流按样本时间戳计算，
// 便于回放历史数据时保持确定性。
func (m *Monitor) AddHeartRate(bpm float64, ts time.Time) (*models.StressAssessment, error) {
	m.mu.Lock()

	metrics, ready, err := m.calc.AddHeartRate(bpm)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.lastSampleAt = ts

	if !ready {
		// Buffering：窗口未满，不产生评估
		m.mu.Unlock()
		return nil, nil
	}

	if !m.lastEvalAt.IsZero() && ts.Sub(m.lastEvalAt) < m.updateInterval {
		// 限流：窗口已满但还没到重新评估的时间
		m.mu.Unlock()
		return nil, nil
	}

	metrics.ComputedAt = ts
	assessment := stress.Classify(metrics, ts)
	m.lastEvalAt = ts
	m.history.push(assessment)

	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	// 锁外通知，监听器可以安全地回查 Monitor
	for _, l := range listeners {
		l.OnStressChange(assessment)
		if assessment.IsHighStress() {
			l.OnHighStressAlert(assessment)
		}
	}

	return &assessment, nil
}

// CurrentStress 最近一次评估；尚未产生评估时返回 nil
func (m *Monitor) CurrentStress() *models.StressAssessment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.last()
}

// CurrentHRV 基于当前窗口的即时 HRV 指标（不产生评估、不限流）
//
// 窗口未满时返回 (零值, false)。
func (m *Monitor) CurrentHRV() (models.HRVMetrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calc.CurrentHRV()
}

// StressTrend 返回最近 d 时间内的评估，按时间升序
func (m *Monitor) StressTrend(d time.Duration) []models.StressAssessment {
	cutoff := time.Now().Add(-d)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.since(cutoff)
}

// AverageStressScore 最近 d 时间内评估分数的均值
//
// 趋势窗口为空时返回 (0, false)。
func (m *Monitor) AverageStressScore(d time.Duration) (float64, bool) {
	trend := m.StressTrend(d)
	if len(trend) == 0 {
		return 0, false
	}

	var sum float64
	for _, a := range trend {
		sum += a.Score
	}
	return sum / float64(len(trend)), true
}

// IsStressIncreasing 压力是否呈上升趋势
//
// 将趋势窗口对半切分，后半段均值严格大于前半段均值时返回 true。
// 评估数 < 2 时返回 false（无法判断趋势）。
func (m *Monitor) IsStressIncreasing(d time.Duration) bool {
	trend := m.StressTrend(d)
	if len(trend) < 2 {
		return false
	}

	mid := len(trend) / 2
	var earlySum, lateSum float64
	for _, a := range trend[:mid] {
		earlySum += a.Score
	}
	for _, a := range trend[mid:] {
		lateSum += a.Score
	}

	earlyMean := earlySum / float64(mid)
	lateMean := lateSum / float64(len(trend)-mid)
	return lateMean > earlyMean
}

// AssessmentsBetween 返回 [from, to] 区间内的评估，按时间升序
//
// 会话汇总（Session.Close）使用的只读视图。
func (m *Monitor) AssessmentsBetween(from, to time.Time) []models.StressAssessment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.between(from, to)
}

// Reset 清空滚动窗口和评估历史，回到 Idle 状态
//
// 不影响已注册的监听器。
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calc.Reset()
	m.history.reset()
	m.lastEvalAt = time.Time{}
	m.lastSampleAt = time.Time{}
}

// LastSampleAt 最后一次收到样本的时间戳（空闲淘汰判断用）
func (m *Monitor) LastSampleAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSampleAt
}

// WindowLen 当前滚动窗口内的样本数（观测用）
func (m *Monitor) WindowLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calc.Len()
}
