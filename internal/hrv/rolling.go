package hrv

import (
	"errors"
	"time"

	"wisefido-stress/internal/models"
)

// DefaultWindowSize 默认滚动窗口大小（IBI 数量）
const DefaultWindowSize = 60

// ErrWindowTooSmall 窗口配置无效（< 2 无法计算变异性）
var ErrWindowTooSmall = errors.New("window size must be at least 2")

// RollingCalculator 滚动窗口 HRV 计算器
//
// 内部使用固定容量环形缓冲区保存最近 N 个 IBI：
// - 满载后 FIFO 淘汰最旧元素，内存上限可预测，淘汰 O(1)
// - 窗口未满时处于缓冲状态，不输出指标（避免用过少样本产生分类）
//
// 非并发安全，由持有方（monitor.Monitor）串行化访问。
type RollingCalculator struct {
	window []float64 // 环形缓冲区
	head   int       // 下一个写入位置
	count  int       // 当前元素数量
}

// NewRollingCalculator 创建滚动窗口计算器
func NewRollingCalculator(windowSize int) (*RollingCalculator, error) {
	if windowSize < 2 {
		return nil, ErrWindowTooSmall
	}
	return &RollingCalculator{
		window: make([]float64, windowSize),
	}, nil
}

// AddHeartRate 加入一个心率样本
//
// 转换为 IBI 压入窗口（满载时淘汰最旧元素）。
// 窗口满之前返回 (零值, false)，表示仍在缓冲；
// 窗口满之后每次调用都返回最新指标。
func (c *RollingCalculator) AddHeartRate(bpm float64) (models.HRVMetrics, bool, error) {
	if bpm <= 0 {
		return models.HRVMetrics{}, false, ErrInvalidSample
	}

	c.window[c.head] = 60000.0 / bpm
	c.head = (c.head + 1) % len(c.window)
	if c.count < len(c.window) {
		c.count++
	}

	if !c.Full() {
		return models.HRVMetrics{}, false, nil
	}
	return ComputeMetrics(c.snapshot(), time.Now()), true, nil
}

// CurrentHRV 基于当前窗口重新计算指标（不修改窗口）
//
// 窗口未满时返回 (零值, false)。
func (c *RollingCalculator) CurrentHRV() (models.HRVMetrics, bool) {
	if !c.Full() {
		return models.HRVMetrics{}, false
	}
	return ComputeMetrics(c.snapshot(), time.Now()), true
}

// Reset 清空窗口
func (c *RollingCalculator) Reset() {
	c.head = 0
	c.count = 0
}

// Len 当前窗口内的 IBI 数量
func (c *RollingCalculator) Len() int {
	return c.count
}

// Full 窗口是否已满（满 = 达到最小可用样本数，开始输出指标）
func (c *RollingCalculator) Full() bool {
	return c.count == len(c.window)
}

// WindowSize 窗口容量
func (c *RollingCalculator) WindowSize() int {
	return len(c.window)
}

// snapshot 按时间顺序导出窗口内容（最旧在前）
func (c *RollingCalculator) snapshot() []float64 {
	out := make([]float64, 0, c.count)
	start := c.head - c.count
	if start < 0 {
		start += len(c.window)
	}
	for i := 0; i < c.count; i++ {
		out = append(out, c.window[(start+i)%len(c.window)])
	}
	return out
}
