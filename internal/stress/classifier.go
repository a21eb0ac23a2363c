// Package stress 提供基于 HRV 指标的压力分类
//
// 分类算法（确定性、可解释）：
// 1. 三项 HRV 指标各自按 5 档阈值带打分（0-100 子分数）
//    - HRV 越高 → 压力越低（阈值带与压力强度成反比）
// 2. 按固定权重加权合成总分：RMSSD 40% / SDNN 35% / pNN50 25%
//    （RMSSD 对短期急性压力最敏感，权重最高）
// 3. 总分按 5 个 20 分等宽区间映射到压力等级，边界归入更严重一档
// 4. 置信度由样本数线性决定（60 个样本饱和到 1.0），与分数无关
//
// 阈值表和子分数是标定常量（与历史数据兼容），不要改动。
package stress

import (
	"fmt"
	"time"

	"wisefido-stress/internal/models"
)

// 指标权重（标定常量，合计 1.0）
const (
	WeightRMSSD = 0.40
	WeightSDNN  = 0.35
	WeightPNN50 = 0.25
)

// FullConfidenceSamples 置信度饱和所需的样本数
const FullConfidenceSamples = 60

// 5 档子分数（等分 0-100，标定常量）
var bandScores = [5]float64{10, 30, 50, 70, 90}

// 阈值带：bands[i] 是第 i 档（压力从低到高）的下界，
// 指标值 >= bands[0] 归入最低压力档，< bands[3] 归入最高压力档
var (
	rmssdBands = [4]float64{50, 35, 25, 15} // ms
	sdnnBands  = [4]float64{100, 70, 50, 30} // ms
	pnn50Bands = [4]float64{15, 7, 3, 1}     // %
)

// 各指标各档的分类说明（reasoning 用）
var (
	rmssdReasons = [5]string{
		"RMSSD above 50ms indicates strong parasympathetic activity and very low short-term stress",
		"RMSSD in 35-50ms indicates healthy short-term variability and low stress",
		"RMSSD in 25-35ms indicates moderately reduced short-term variability",
		"RMSSD in 15-25ms indicates elevated short-term stress",
		"RMSSD below 15ms indicates strongly suppressed short-term variability and very high stress",
	}
	sdnnReasons = [5]string{
		"SDNN above 100ms indicates very high overall variability and very low stress",
		"SDNN in 70-100ms indicates healthy overall variability",
		"SDNN in 50-70ms indicates moderately reduced overall variability",
		"SDNN in 30-50ms indicates reduced overall variability and elevated stress",
		"SDNN below 30ms indicates strongly reduced overall variability and very high stress",
	}
	pnn50Reasons = [5]string{
		"pNN50 above 15% indicates very active parasympathetic regulation",
		"pNN50 in 7-15% indicates healthy parasympathetic activity",
		"pNN50 in 3-7% indicates moderately reduced parasympathetic activity",
		"pNN50 in 1-3% indicates low parasympathetic activity and elevated stress",
		"pNN50 below 1% indicates minimal parasympathetic activity and very high stress",
	}
)

// metricBand 指标值落入的压力档位（0=压力最低 … 4=压力最高）
//
// 指标值越高压力越低，因此从高阈值向低阈值匹配。
func metricBand(value float64, bands [4]float64) int {
	for i, threshold := range bands {
		if value >= threshold {
			return i
		}
	}
	return 4
}

// Classify 将一个 HRV 指标快照映射为压力评估
//
// 对合法的 HRVMetrics 永不失败：
// - 退化指标（SampleCount < 2，三项指标为 0）会归入最高压力档，
//   这在数学上是正确的（零变异 = 最大压力信号），但置信度接近 0，
//   是否采信由调用方决定。不要对退化输入做特殊处理。
func Classify(metrics models.HRVMetrics, at time.Time) models.StressAssessment {
	rmssdBand := metricBand(metrics.RMSSD, rmssdBands)
	sdnnBand := metricBand(metrics.SDNN, sdnnBands)
	pnn50Band := metricBand(metrics.PNN50, pnn50Bands)

	score := bandScores[rmssdBand]*WeightRMSSD +
		bandScores[sdnnBand]*WeightSDNN +
		bandScores[pnn50Band]*WeightPNN50

	return models.StressAssessment{
		Level:      levelFromScore(score),
		Score:      score,
		Confidence: Confidence(metrics.SampleCount),
		Metrics:    metrics,
		Reasoning: []string{
			rmssdReasons[rmssdBand],
			sdnnReasons[sdnnBand],
			pnn50Reasons[pnn50Band],
		},
		Timestamp: at,
	}
}

// levelFromScore 总分 → 压力等级（5 个 20 分等宽区间，边界归入更严重一档）
func levelFromScore(score float64) models.StressLevel {
	switch {
	case score >= 80:
		return models.StressLevelVeryHigh
	case score >= 60:
		return models.StressLevelHigh
	case score >= 40:
		return models.StressLevelModerate
	case score >= 20:
		return models.StressLevelLow
	default:
		return models.StressLevelVeryLow
	}
}

// Confidence 由样本数计算置信度（0-1）
//
// 样本越多分类越可信，与分数本身无关：
// 线性增长，>= FullConfidenceSamples 时饱和到 1.0。
func Confidence(sampleCount int) float64 {
	if sampleCount <= 0 {
		return 0
	}
	if sampleCount >= FullConfidenceSamples {
		return 1.0
	}
	return float64(sampleCount) / float64(FullConfidenceSamples)
}

// DescribeScore 调试/日志用的简短描述
func DescribeScore(a *models.StressAssessment) string {
	return fmt.Sprintf("level=%s score=%.1f confidence=%.2f samples=%d",
		a.Level, a.Score, a.Confidence, a.Metrics.SampleCount)
}
