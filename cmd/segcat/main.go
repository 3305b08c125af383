package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/SegCat/internal/app/run"
	"github.com/John-Robertt/SegCat/internal/config"
	"github.com/John-Robertt/SegCat/internal/domain"
	"github.com/John-Robertt/SegCat/internal/infra/reveal"
	"github.com/John-Robertt/SegCat/internal/prompt"
)

func main() {
	args := os.Args[1:]
	for _, a := range args {
		if isHelp(a) {
			printUsage()
			return
		}
	}

	ca, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}

	eff, err := config.LoadEffective(cwd, ca)
	if err != nil {
		rr := reportForConfigError(cwd, err)
		emitReport(rr)
		os.Exit(1)
	}

	// 平台实现在启动时选定一次，调用处不再分支。
	revealer := reveal.ForPlatform()

	progressW, interactive := pickProgressWriter()
	promptW := progressW
	if promptW == nil {
		// stdout 非 TTY 时提问仍要有去处（例如管道喂入回答的场景）。
		promptW = os.Stderr
	}

	ui := prompt.New(os.Stdin, promptW, eff.Path)
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.Execute(context.Background(), eff, ui, revealer, obs)

	emitReport(rr)
	if rr.Status == domain.StatusProcessed {
		return
	}
	os.Exit(1)
}

func parseArgs(args []string) (config.CLIArgs, error) {
	ca := config.CLIArgs{}
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		if ca.Path != "" {
			return config.CLIArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
		}
		ca.Path = a
	}
	return ca, nil
}

// isHelp 只认旗标形式：裸 "help" 留给同名目录当 path 用。
func isHelp(s string) bool {
	return s == "-h" || s == "--help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  segcat [path]

说明：
  扫描 path（默认当前目录）下包含图片的文件夹，交互式选择其中一个，
  把其中的 segment_*.png 按选定方向连接为一张 PNG，
  输出到 <path>/concatenated/<时间戳>_<三位随机数>.png。

  可选配置文件 <path>/segcat.json：
    {"path": "...", "axis": "horizontal|vertical", "reveal": true|false, "exclude_dirs": [...]}
  axis/reveal 设置后跳过对应提问。

参数：
  -h, --help  显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		if rr.Status == domain.StatusProcessed {
			fmt.Fprintf(os.Stdout, "连接完成：%s（%dx%d，%d 个碎片）\n",
				rr.Output.Rel, rr.Output.Width, rr.Output.Height, len(rr.Fragments),
			)
			return
		}
		fmt.Fprintf(os.Stderr, "失败 %s: %s\n", rr.ErrorCode, rr.ErrorMsg)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	if rr.Status == domain.StatusProcessed {
		fmt.Fprintf(os.Stderr, "完成：output=%s fragments=%d\n", rr.Output.Rel, len(rr.Fragments))
	} else {
		fmt.Fprintf(os.Stderr, "失败：%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
	}
}

func reportForConfigError(cwd string, err error) domain.RunReport {
	cwdAbs, _ := filepath.Abs(cwd)
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       cwdAbs,
		StartedAt:  now,
		FinishedAt: now,
		Status:     domain.StatusFailed,
		ErrorCode:  config.Code(err),
		ErrorMsg:   err.Error(),
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
