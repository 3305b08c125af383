package domain

import "fmt"

// Folder 描述一次扫描得到的候选文件夹（直接包含至少一个常见格式的图片文件）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - 扫描阶段只看文件名/扩展名，不读文件内容
type Folder struct {
	AbsPath    string
	RelPath    string // 相对扫描根目录；根目录本身为 "."
	ImageCount int    // 直接包含的图片文件数（用于选择菜单展示）
}

// Fragment 描述待连接的单个碎片文件（segment_*.png）。
// 集合内按 Name 字典序排列，该顺序就是最终拼接顺序。
type Fragment struct {
	AbsPath string
	RelPath string
	Name    string // 文件名（含扩展名）
}

// CanvasSize 是像素尺寸对。校验通过后，集合内所有碎片共享同一尺寸。
type CanvasSize struct {
	Width  int
	Height int
}

func (s CanvasSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
