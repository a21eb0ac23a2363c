// Package hrv 提供心率变异性（HRV）指标计算
//
// 主要功能：
// - BPM 序列 → IBI（Inter-Beat Interval）序列转换
// - SDNN / RMSSD / pNN50 三项标准 HRV 指标
// - 批量计算（纯函数，可用于离线分析）和滚动窗口计算（实时流）
//
// IBI 换算说明：
// - IBI = 60000 / BPM（ms）
// - 这是基于平均瞬时 BPM 的近似值，不是真实的逐搏间期
//   （真实 IBI 需要逐搏时间戳，可穿戴设备通常只上报平均 BPM）
// - 下游压力分类阈值表是按此近似值标定的，不要"修正"此换算
package hrv

import (
	"errors"
	"math"
	"time"

	"wisefido-stress/internal/models"
)

// ErrInvalidSample 无效心率样本（BPM <= 0）
var ErrInvalidSample = errors.New("invalid heart rate sample: bpm must be positive")

// BPMToIBI 将 BPM 序列转换为 IBI 序列（ms）
//
// 逐元素换算 60000/bpm，保持下标对齐（不做静默丢弃）。
// 任何 bpm <= 0 返回 ErrInvalidSample，由调用方在上游过滤。
func BPMToIBI(bpms []float64) ([]float64, error) {
	ibis := make([]float64, 0, len(bpms))
	for _, bpm := range bpms {
		if bpm <= 0 {
			return nil, ErrInvalidSample
		}
		ibis = append(ibis, 60000.0/bpm)
	}
	return ibis, nil
}

// SDNN 计算 IBI 序列的总体标准差（ms）
//
// 使用总体标准差（除以 N，不是 N-1）。
// 样本数 < 2 时返回 0（数据不足，由 SampleCount 表达低置信度）。
func SDNN(ibis []float64) float64 {
	if len(ibis) < 2 {
		return 0
	}

	var sum float64
	for _, ibi := range ibis {
		sum += ibi
	}
	mean := sum / float64(len(ibis))

	var sqDiffSum float64
	for _, ibi := range ibis {
		diff := ibi - mean
		sqDiffSum += diff * diff
	}

	return math.Sqrt(sqDiffSum / float64(len(ibis)))
}

// RMSSD 计算相邻 IBI 差值的均方根（ms）
//
// 样本数 < 2（即不足 1 个相邻差值）时返回 0。
func RMSSD(ibis []float64) float64 {
	if len(ibis) < 2 {
		return 0
	}

	var sqSum float64
	for i := 1; i < len(ibis); i++ {
		diff := ibis[i] - ibis[i-1]
		sqSum += diff * diff
	}

	return math.Sqrt(sqSum / float64(len(ibis)-1))
}

// PNN50 计算相邻 IBI 差值绝对值超过 50ms 的百分比（0-100）
func PNN50(ibis []float64) float64 {
	if len(ibis) < 2 {
		return 0
	}

	count := 0
	for i := 1; i < len(ibis); i++ {
		if math.Abs(ibis[i]-ibis[i-1]) > 50 {
			count++
		}
	}

	return 100.0 * float64(count) / float64(len(ibis)-1)
}

// ComputeMetrics 计算完整的 HRV 指标快照
func ComputeMetrics(ibis []float64, at time.Time) models.HRVMetrics {
	return models.HRVMetrics{
		SDNN:        SDNN(ibis),
		RMSSD:       RMSSD(ibis),
		PNN50:       PNN50(ibis),
		SampleCount: len(ibis),
		ComputedAt:  at,
	}
}

// CalculateFromHeartRates 批量入口：BPM 序列 → HRV 指标
//
// 纯函数，无副作用，可复用于离线分析。
func CalculateFromHeartRates(bpms []float64) (models.HRVMetrics, error) {
	ibis, err := BPMToIBI(bpms)
	if err != nil {
		return models.HRVMetrics{}, err
	}
	return ComputeMetrics(ibis, time.Now()), nil
}
