package domain

import "strings"

// Axis 是连接方向：决定哪个维度随碎片数量累加。
type Axis string

const (
	// AxisHorizontal 横向连接：宽度累加，高度不变。
	AxisHorizontal Axis = "horizontal"
	// AxisVertical 纵向连接：高度累加，宽度不变。
	AxisVertical Axis = "vertical"
)

// ParseAxis 校验并解析 axis 字符串（大小写不敏感）。
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(AxisHorizontal):
		return AxisHorizontal, true
	case string(AxisVertical):
		return AxisVertical, true
	default:
		return "", false
	}
}
