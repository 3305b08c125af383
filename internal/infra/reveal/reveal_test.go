package reveal

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func captureCommands(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	old := runCommand
	runCommand = func(name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}
	t.Cleanup(func() { runCommand = old })
	return &calls
}

func TestDarwinRevealer_Command(t *testing.T) {
	calls := captureCommands(t)

	if err := (darwinRevealer{}).Reveal("/abs/concatenated/x.png"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"open", "-R", "/abs/concatenated/x.png"}
	assertOneCall(t, *calls, want)
}

func TestWindowsRevealer_Command(t *testing.T) {
	calls := captureCommands(t)

	if err := (windowsRevealer{}).Reveal(`C:\out\x.png`); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"explorer", "/select,", `C:\out\x.png`}
	assertOneCall(t, *calls, want)
}

func TestWindowsRevealer_ExitErrorSwallowed(t *testing.T) {
	old := runCommand
	runCommand = func(name string, args ...string) error {
		return &exec.ExitError{}
	}
	defer func() { runCommand = old }()

	// explorer 的非零退出码不是失败信号。
	if err := (windowsRevealer{}).Reveal(`C:\out\x.png`); err != nil {
		t.Fatalf("期望退出码被吞掉，实际：%v", err)
	}
}

func TestXDGRevealer_OpensParentDir(t *testing.T) {
	calls := captureCommands(t)

	path := filepath.Join("/abs", "concatenated", "x.png")
	if err := (xdgRevealer{}).Reveal(path); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"xdg-open", filepath.Join("/abs", "concatenated")}
	assertOneCall(t, *calls, want)
}

func TestRevealer_CommandMissing(t *testing.T) {
	old := runCommand
	runCommand = func(name string, args ...string) error {
		return errors.New("executable file not found")
	}
	defer func() { runCommand = old }()

	if err := (xdgRevealer{}).Reveal("/abs/x.png"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestForPlatform_ReturnsSomething(t *testing.T) {
	r := ForPlatform()
	if r == nil || r.Name() == "" {
		t.Fatalf("ForPlatform 返回不可用实现：%v", r)
	}
}

func assertOneCall(t *testing.T, calls [][]string, want []string) {
	t.Helper()
	if len(calls) != 1 {
		t.Fatalf("期望调用 1 次命令，实际 %d：%v", len(calls), calls)
	}
	got := calls[0]
	if len(got) != len(want) {
		t.Fatalf("命令不符合预期：got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("命令不符合预期：got=%v want=%v", got, want)
		}
	}
}
