package monitor

import (
	"time"

	"wisefido-stress/internal/models"
)

// assessmentRing 固定容量的评估历史环形缓冲区
//
// 满载后覆盖最旧条目，淘汰 O(1)，内存上限可预测。
// 条目按 push 顺序即时间升序（Monitor 保证时间戳单调不减）。
type assessmentRing struct {
	buf   []models.StressAssessment
	head  int // 下一个写入位置
	count int
}

func newAssessmentRing(capacity int) *assessmentRing {
	return &assessmentRing{
		buf: make([]models.StressAssessment, capacity),
	}
}

func (r *assessmentRing) push(a models.StressAssessment) {
	r.buf[r.head] = a
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// last 最新条目；为空时返回 nil
func (r *assessmentRing) last() *models.StressAssessment {
	if r.count == 0 {
		return nil
	}
	idx := r.head - 1
	if idx < 0 {
		idx += len(r.buf)
	}
	a := r.buf[idx]
	return &a
}

// since 返回时间戳不早于 cutoff 的条目，按时间升序
func (r *assessmentRing) since(cutoff time.Time) []models.StressAssessment {
	return r.between(cutoff, time.Time{})
}

// between 返回 [from, to] 区间内的条目，按时间升序
//
// to 为零值时表示不设上界。
func (r *assessmentRing) between(from, to time.Time) []models.StressAssessment {
	var out []models.StressAssessment
	start := r.head - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		a := r.buf[(start+i)%len(r.buf)]
		if a.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && a.Timestamp.After(to) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *assessmentRing) len() int {
	return r.count
}

func (r *assessmentRing) reset() {
	r.head = 0
	r.count = 0
}
