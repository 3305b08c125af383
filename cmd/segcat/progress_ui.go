package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/John-Robertt/SegCat/internal/app/run"
	"github.com/John-Robertt/SegCat/internal/config"
	"github.com/John-Robertt/SegCat/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的阶段输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
type progressUI struct {
	w io.Writer

	mu sync.Mutex
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "[%s] SegCat run\n", time.Now().Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	if eff.Axis != "" {
		fmt.Fprintf(p.w, "  axis: %s（预设，跳过提问）\n", eff.Axis)
	}
	if eff.Reveal != nil {
		fmt.Fprintf(p.w, "  reveal: %s（预设，跳过提问）\n", onOff(*eff.Reveal))
	}
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 %s/\n",
		formatStringListJSON(eff.ExcludeDirs), domain.OutDirName,
	)
	fmt.Fprintf(p.w, "  out: %s\n", filepath.Join(eff.Path, domain.OutDirName))
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: folders=%d (%s)\n",
			intField(fields, "folders"), formatShortDuration(dur),
		)
	case "fragments":
		fmt.Fprintf(p.w, "碎片: files=%d (%s)\n",
			intField(fields, "files"), formatShortDuration(dur),
		)
	case "validate":
		fmt.Fprintf(p.w, "校验: size=%dx%d (%s)\n",
			intField(fields, "width"), intField(fields, "height"), formatShortDuration(dur),
		)
	case "compose":
		fmt.Fprintf(p.w, "拼接: size=%dx%d bytes=%d (%s)\n",
			intField(fields, "width"), intField(fields, "height"),
			intField(fields, "bytes"), formatShortDuration(dur),
		)
	case "save":
		fmt.Fprintf(p.w, "落盘: %s (%s)\n", strField(fields, "file"), formatShortDuration(dur))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnNotice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "提示: %s\n", msg)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}

func strField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
