// Package academic 学业规则计算：加权成绩、出勤率、截止优先级、薄弱知识点与学习时长汇总。
// 本包只做纯计算，不访问存储，时间一律由调用方传入。
package academic

import "math"

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
