package run

import (
	"time"

	"github.com/John-Robertt/SegCat/internal/config"
	"github.com/John-Robertt/SegCat/internal/domain"
)

// Observer 用于把“运行进度/阶段信息”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 实现可以为 nil（Execute 内部全部判空）。
type Observer interface {
	// OnStart 在 Execute 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnNotice 用于非致命事件（例如文件管理器调起失败）的一行提示。
	OnNotice(msg string)
}

// Interactor 是运行中途需要用户决策的三处提问。
// 实现由上层选择：终端问答（cmd），或测试里的脚本化回答。
type Interactor interface {
	SelectFolder(folders []domain.Folder) (domain.Folder, error)
	SelectAxis() (domain.Axis, error)
	ConfirmReveal() (bool, error)
}
