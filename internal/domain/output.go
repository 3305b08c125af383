package domain

import (
	"fmt"
	"time"
)

// OutDirName 是输出目录名（位于扫描根目录下）。
// 扫描阶段永久排除该目录，避免把上次的产物再拼一遍。
const OutDirName = "concatenated"

// OutputFileName 生成输出文件名：时间戳 + 三位随机数，降低同一秒内重名概率。
// suffix 取值范围约定为 [100, 999]。
func OutputFileName(t time.Time, suffix int) string {
	return fmt.Sprintf("%s_%03d.png", t.Format("20060102_150405"), suffix)
}
