package stress

import (
	"wisefido-stress/internal/models"
)

// 各压力等级的建议（固定查表，不做推断）

var recommendationsEn = map[models.StressLevel][]string{
	models.StressLevelVeryLow: {
		"Your stress level is very low. Keep up your current routine.",
		"Good recovery state, suitable for training or focused work.",
	},
	models.StressLevelLow: {
		"Your stress level is low and well within a healthy range.",
		"Maintain regular sleep and hydration to stay in this range.",
	},
	models.StressLevelModerate: {
		"Moderate stress detected. Consider a short break or a walk.",
		"Slow breathing for a few minutes can help lower your stress.",
	},
	models.StressLevelHigh: {
		"Elevated stress detected. Step away from stressful tasks if possible.",
		"Try deep breathing: inhale 4 seconds, hold 4, exhale 6.",
		"Avoid caffeine until your stress level comes back down.",
	},
	models.StressLevelVeryHigh: {
		"Very high stress detected. Stop and rest if you can.",
		"Find a quiet place and practice slow breathing for 5-10 minutes.",
		"If this persists across sessions, consider talking to a professional.",
	},
}

var recommendationsZh = map[models.StressLevel][]string{
	models.StressLevelVeryLow: {
		"压力水平非常低，保持当前的生活节奏即可。",
		"恢复状态良好，适合进行训练或专注工作。",
	},
	models.StressLevelLow: {
		"压力水平较低，处于健康范围内。",
		"保持规律作息和充足饮水，维持当前状态。",
	},
	models.StressLevelModerate: {
		"检测到中等压力，建议短暂休息或散步。",
		"进行几分钟缓慢深呼吸有助于降低压力。",
	},
	models.StressLevelHigh: {
		"检测到较高压力，如有条件请暂离当前高压任务。",
		"尝试深呼吸：吸气4秒，屏息4秒，呼气6秒。",
		"压力回落前避免摄入咖啡因。",
	},
	models.StressLevelVeryHigh: {
		"检测到非常高的压力，请立即停下休息。",
		"找一个安静的地方，进行5-10分钟的缓慢呼吸练习。",
		"如果持续多次出现，建议咨询专业人士。",
	},
}

// Recommendations 返回指定压力等级的英文建议列表
//
// 非法等级返回 nil。
func Recommendations(level models.StressLevel) []string {
	return recommendationsEn[level]
}

// RecommendationsZh 返回指定压力等级的中文建议列表
func RecommendationsZh(level models.StressLevel) []string {
	return recommendationsZh[level]
}
