package monitor

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMonitorExists 监测器已存在（Create 重复调用）
var ErrMonitorExists = errors.New("monitor already exists for key")

// Registry 按对象键管理 Monitor 实例的显式注册表
//
// 宿主服务持有一个 Registry，每个被监测对象（tenant + subject）
// 对应一个长生命周期的 Monitor。创建和淘汰都是显式操作：
// - 创建：由消费入口根据接入策略调用 Create
// - 淘汰：EvictIdle 定期清理长时间无样本的实例，避免无界增长
//
// 跨实例无共享可变状态，Registry 自身的 map 由读写锁保护。
type Registry struct {
	mu       sync.RWMutex
	cfg      Config
	monitors map[string]*Monitor
}

// NewRegistry 创建注册表；cfg 作为所有新 Monitor 的配置模板
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		monitors: make(map[string]*Monitor),
	}
}

// Key 构建对象键
func Key(tenantID, subjectID string) string {
	return fmt.Sprintf("%s:%s", tenantID, subjectID)
}

// Create 为对象键创建新 Monitor
//
// 键已存在时返回 ErrMonitorExists（创建必须是显式决策，
// 不做静默的 get-or-create）。
func (r *Registry) Create(key string) (*Monitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.monitors[key]; ok {
		return nil, ErrMonitorExists
	}

	m, err := New(r.cfg)
	if err != nil {
		return nil, err
	}
	r.monitors[key] = m
	return m, nil
}

// Get 查找对象键对应的 Monitor
func (r *Registry) Get(key string) (*Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.monitors[key]
	return m, ok
}

// Remove 移除并丢弃对象键对应的 Monitor
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.monitors[key]; !ok {
		return false
	}
	delete(r.monitors, key)
	return true
}

// Keys 返回当前所有对象键
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.monitors))
	for k := range r.monitors {
		keys = append(keys, k)
	}
	return keys
}

// Len 当前管理的 Monitor 数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.monitors)
}

// EvictIdle 淘汰超过 maxIdle 未收到样本的 Monitor，返回淘汰数量
//
// 从未收到过样本的实例按创建即空闲处理（LastSampleAt 为零值），
// 不会被本方法淘汰，由 Remove 显式清理。
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, m := range r.monitors {
		last := m.LastSampleAt()
		if !last.IsZero() && last.Before(cutoff) {
			delete(r.monitors, key)
			evicted++
		}
	}
	return evicted
}
