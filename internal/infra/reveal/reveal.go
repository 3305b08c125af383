package reveal

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能捕获将要执行的命令而不真的调起文件管理器。
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Revealer 是“在 OS 文件管理器中展示某个文件”的最小能力。
//
// 约束：
// - 实现按平台在启动时选定一次（ForPlatform），调用处不再按平台分支
// - 这是成功后的便利步骤：调用方只记录失败，绝不因此中断流程
type Revealer interface {
	// Name 返回实现名（darwin/windows/xdg），用于日志与测试。
	Name() string
	Reveal(path string) error
}

// ForPlatform 按 runtime.GOOS 选定当前平台的实现。
func ForPlatform() Revealer {
	switch runtime.GOOS {
	case "darwin":
		return darwinRevealer{}
	case "windows":
		return windowsRevealer{}
	default:
		return xdgRevealer{}
	}
}

type darwinRevealer struct{}

func (darwinRevealer) Name() string { return "darwin" }

func (darwinRevealer) Reveal(path string) error {
	return runCommand("open", "-R", path)
}

type windowsRevealer struct{}

func (windowsRevealer) Name() string { return "windows" }

func (windowsRevealer) Reveal(path string) error {
	// explorer 即使成功选中文件也常返回非零退出码：退出码不可作为失败信号。
	err := runCommand("explorer", "/select,", path)
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return nil
	}
	return err
}

type xdgRevealer struct{}

func (xdgRevealer) Name() string { return "xdg" }

func (xdgRevealer) Reveal(path string) error {
	// xdg-open 没有“选中文件”的标准参数：退而求其次打开所在目录。
	return runCommand("xdg-open", filepath.Dir(path))
}
