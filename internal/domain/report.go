package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

const (
	FragmentStatusValidated = "validated"
	FragmentStatusComposed  = "composed"
	FragmentStatusFailed    = "failed"
)

const (
	ErrCodeNoFoldersFound   = "no_folders_found"
	ErrCodeNoFragmentsFound = "no_fragments_found"
	ErrCodeSizeMismatch     = "size_mismatch"
	ErrCodeImageReadFailed  = "image_read_failed"
	ErrCodeComposeFailed    = "compose_failed"
	ErrCodeIOFailed         = "io_failed"
	ErrCodeRevealFailed     = "reveal_failed"
	ErrCodeInputAborted     = "input_aborted"
	ErrCodeConfigInvalid    = "config_invalid"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
// 一次运行只产出一个结果：要么成功写出一个文件，要么带 error_code 失败。
type RunReport struct {
	Path   string `json:"path"`
	Folder string `json:"folder"` // 被选中文件夹（相对 path）；选择前失败时为空
	Axis   string `json:"axis"`  // "horizontal" | "vertical"；选择前失败时为空

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Fragments []FragmentResult `json:"fragments"`
	Output    OutputResult     `json:"output"`

	// 文件管理器展示是后置便利步骤：失败只记录，不改变 Status。
	Revealed    bool   `json:"revealed"`
	RevealError string `json:"reveal_error"`
}

type FragmentResult struct {
	Src    string `json:"src"` // 相对 path
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Status string `json:"status"`
}

type OutputResult struct {
	Rel    string `json:"rel"` // 相对 path，例如 concatenated/20260829_120000_123.png
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Finalize 统一时间为 UTC（确保 JSON 为 RFC3339 且后缀 Z），并保证切片字段非 nil
// （对外 JSON 输出 [] 而不是 null）。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Fragments == nil {
		r.Fragments = []FragmentResult{}
	}
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
