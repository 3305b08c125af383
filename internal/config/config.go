package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/SegCat/internal/domain"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是可选配置文件名，位于扫描根目录下。
const FileName = "segcat.json"

// CLIArgs 只包含 CLI 暴露的入口（path），其余交互项由提示问答给出。
type CLIArgs struct {
	Path string
}

// FileConfig 对应 segcat.json 的解析结构。文件整体可选，所有字段可选。
type FileConfig struct {
	Path        string   `json:"path"`
	Axis        string   `json:"axis"`   // "horizontal" | "vertical"；设置后跳过方向提问
	Reveal      *bool    `json:"reveal"` // 设置后跳过文件管理器提问
	ExcludeDirs []string `json:"exclude_dirs"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Path 是扫描根目录：clean + absolute（取代隐式的“当前工作目录”）。
	Path string

	// Axis 非空时为预设方向，运行时不再提问。
	Axis domain.Axis
	// Reveal 非 nil 时为预设答案，运行时不再提问。
	Reveal *bool

	ExcludeDirs []string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取可选配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/segcat.json（可选）
// 2) CLI 未提供 path：尝试读取 <cwd>/segcat.json（可选）；其中的 path 字段生效，
//    否则根目录就是 cwd
//
// 覆盖优先级（固定）：
// - path：CLI path > config path > cwd
// - axis/reveal/exclude_dirs：仅由 config 控制（CLI 不暴露，保持纯交互面）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		// CLI path 优先：config 里的 path 字段被忽略。
		return merge(absPath, fc, cfgPath)
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	absPath := cwdAbs
	if strings.TrimSpace(fc.Path) != "" {
		absPath = absCleanFrom(cwdAbs, fc.Path)
	}
	return merge(absPath, fc, cfgPath)
}

func merge(absPath string, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	var axis domain.Axis
	if strings.TrimSpace(fc.Axis) != "" {
		a, ok := domain.ParseAxis(fc.Axis)
		if !ok {
			return EffectiveConfig{}, &Error{
				Code: ErrCodeInvalid,
				Path: cfgPath,
				Err:  fmt.Errorf("axis 只能是 horizontal 或 vertical，实际是 %q", fc.Axis),
			}
		}
		axis = a
	}

	return EffectiveConfig{
		Path:        absPath,
		Axis:        axis,
		Reveal:      fc.Reveal,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
