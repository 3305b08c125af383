package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/SegCat/internal/domain"
)

// ErrAborted 表示输入流在提问中途结束（EOF）。
// 上层把它映射为 error_code=input_aborted。
var ErrAborted = errors.New("prompt: 输入中止")

// Prompter 是面向终端的交互实现：所有提问写 w，所有回答从 r 逐行读取。
//
// 约束：
// - 同一个 Prompter 必须复用同一个底层 reader（多个 bufio 会把输入读丢）
// - 非法输入一律重新提问，不计次数；只有 EOF 让本次运行中止
type Prompter struct {
	in   *bufio.Scanner
	out  io.Writer
	root string

	// statFunc 可替换：让测试不依赖真实文件系统判断“按路径选择”。
	statFunc func(string) (os.FileInfo, error)
}

func New(r io.Reader, w io.Writer, root string) *Prompter {
	return &Prompter{
		in:       bufio.NewScanner(r),
		out:      w,
		root:     filepath.Clean(root),
		statFunc: os.Stat,
	}
}

// SelectFolder 展示候选列表，接受 1 起始的编号或一个存在的目录路径。
func (p *Prompter) SelectFolder(folders []domain.Folder) (domain.Folder, error) {
	fmt.Fprintln(p.out, "发现以下包含图片的文件夹：")
	for i, f := range folders {
		fmt.Fprintf(p.out, "%d. %s（%d 个图片文件）\n", i+1, f.RelPath, f.ImageCount)
	}
	fmt.Fprintf(p.out, "（%s 目录不会被列出）\n", domain.OutDirName)

	for {
		fmt.Fprint(p.out, "\n请输入文件夹编号或路径：")
		line, err := p.readLine()
		if err != nil {
			return domain.Folder{}, err
		}

		if n, e := strconv.Atoi(line); e == nil {
			if n >= 1 && n <= len(folders) {
				return folders[n-1], nil
			}
			fmt.Fprintln(p.out, "无效的编号。")
			continue
		}

		if f, ok := p.folderFromPath(line); ok {
			return f, nil
		}
		fmt.Fprintln(p.out, "指定的文件夹不存在。")
	}
}

// SelectAxis 提供两项菜单：1 纵向，2 横向。
func (p *Prompter) SelectAxis() (domain.Axis, error) {
	for {
		fmt.Fprint(p.out, "\n请选择连接方向（1: 纵向连接，2: 横向连接）：")
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		switch line {
		case "1":
			return domain.AxisVertical, nil
		case "2":
			return domain.AxisHorizontal, nil
		default:
			fmt.Fprintln(p.out, "请输入 1 或 2。")
		}
	}
}

// ConfirmReveal 询问是否在文件管理器中展示输出文件。
func (p *Prompter) ConfirmReveal() (bool, error) {
	for {
		fmt.Fprint(p.out, "\n是否在文件管理器中显示输出文件？(y/n)：")
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.out, "请输入 y 或 n。")
		}
	}
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("%w：%v", ErrAborted, err)
		}
		return "", ErrAborted
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) folderFromPath(raw string) (domain.Folder, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Folder{}, false
	}

	abs := raw
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, abs)
	}
	abs = filepath.Clean(abs)

	fi, err := p.statFunc(abs)
	if err != nil || !fi.IsDir() {
		return domain.Folder{}, false
	}

	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		// root 之外的目录：RelPath 兜底用绝对路径（至少可追溯）。
		rel = abs
	}
	return domain.Folder{AbsPath: abs, RelPath: rel}, true
}
