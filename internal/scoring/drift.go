package scoring

import "math"

// PercentageDifference 计算当前得分相对上次得分的变化百分比 (取整)
// previous 为 0 或结果不是有限数时返回 nil，表示无法计算漂移
func PercentageDifference(current, previous float64) *int {
	if previous == 0 {
		return nil
	}
	diff := math.Round((current - previous) / previous * 100)
	if math.IsNaN(diff) || math.IsInf(diff, 0) {
		return nil
	}
	pct := int(diff)
	return &pct
}
