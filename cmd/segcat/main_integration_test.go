package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/SegCat/internal/domain"
)

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 RunReport JSON
	// （提问/进度必须走 stderr）。回答通过管道喂入：选 1 号文件夹、纵向、不展示。
	root := t.TempDir()

	writeTestPNG(t, filepath.Join(root, "frames", "segment_01.png"), 20, 10)
	writeTestPNG(t, filepath.Join(root, "frames", "segment_02.png"), 20, 10)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/segcat", root)
	cmd.Dir = repoRoot
	cmd.Stdin = strings.NewReader("1\n1\nn\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rr.Status != domain.StatusProcessed || rr.Output.Width != 20 || rr.Output.Height != 20 {
		t.Fatalf("运行结果不符合预期：%+v", rr)
	}

	// 提问/摘要不应出现在 stdout。
	if strings.Contains(stdout.String(), "请输入") || strings.Contains(stdout.String(), "完成：") {
		t.Fatalf("stdout 不应包含提问/摘要输出：%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "完成：output=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}

	// 产物必须真实写出。
	if _, err := os.Stat(filepath.Join(root, rr.Output.Rel)); err != nil {
		t.Fatalf("输出文件不存在：%v", err)
	}
}

func TestCLI_SizeMismatch_ExitCode1(t *testing.T) {
	root := t.TempDir()

	writeTestPNG(t, filepath.Join(root, "frames", "segment_01.png"), 20, 10)
	writeTestPNG(t, filepath.Join(root, "frames", "segment_02.png"), 30, 10)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/segcat", root)
	cmd.Dir = repoRoot
	cmd.Stdin = strings.NewReader("1\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		t.Fatalf("期望非零退出码\nstdout=%s", stdout.String())
	}

	var rr domain.RunReport
	if e := json.Unmarshal(stdout.Bytes(), &rr); e != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", e, stdout.String())
	}
	if rr.Status != domain.StatusFailed || rr.ErrorCode != domain.ErrCodeSizeMismatch {
		t.Fatalf("期望 size_mismatch，实际：%+v", rr)
	}
	if _, err := os.Stat(filepath.Join(root, domain.OutDirName)); !os.IsNotExist(err) {
		t.Fatalf("失败不应创建输出目录，但 Stat err=%v", err)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建文件失败：%v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("编码 PNG 失败：%v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("关闭文件失败：%v", err)
	}
}
