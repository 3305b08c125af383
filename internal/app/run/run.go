package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/John-Robertt/SegCat/internal/compose"
	"github.com/John-Robertt/SegCat/internal/config"
	"github.com/John-Robertt/SegCat/internal/domain"
	"github.com/John-Robertt/SegCat/internal/infra/fsx"
	"github.com/John-Robertt/SegCat/internal/infra/reveal"
	"github.com/John-Robertt/SegCat/internal/prompt"
	"github.com/John-Robertt/SegCat/internal/scan"
)

// 通过可替换的函数指针，让测试能固定随机后缀/时间戳。
var (
	randSuffix = func() int { return 100 + rand.Intn(900) }
	nowFunc    = time.Now
)

// 同一秒重名时换随机后缀重试的上限。超过即放弃（io_failed）。
const maxNameAttempts = 8

// Execute 执行一次完整的连接流程，并返回对外稳定的 RunReport。
//
// 流程严格自顶向下：扫描 -> 选文件夹 -> 列碎片 -> 校验尺寸 -> 选方向 ->
// 拼接 -> 原子落盘 -> （可选）文件管理器展示。任何一步失败都带 error_code
// 结束本次运行；只有展示步骤是 best-effort。
func Execute(ctx context.Context, eff config.EffectiveConfig, ui Interactor, rev reveal.Revealer, obs Observer) domain.RunReport {
	started := nowFunc().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		StartedAt: started,
		Status:    domain.StatusProcessed, // 失败时覆盖
		Fragments: []domain.FragmentResult{},
	}

	// 扫描候选文件夹。
	scanStarted := nowFunc()
	folders, err := scan.Folders(eff.Path, eff.ExcludeDirs)
	if err != nil {
		return failed(&rr, domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err))
	}
	if len(folders) == 0 {
		return failed(&rr, domain.ErrCodeNoFoldersFound, "没有找到包含图片文件的文件夹")
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"folders": len(folders)}, time.Since(scanStarted))
	}

	folder, err := ui.SelectFolder(folders)
	if err != nil {
		return failed(&rr, abortCode(err), fmt.Sprintf("选择文件夹失败：%v", err))
	}
	rr.Folder = folder.RelPath

	// 列出碎片。
	fragStarted := nowFunc()
	frags, err := scan.Fragments(folder)
	if err != nil {
		return failed(&rr, domain.ErrCodeIOFailed, fmt.Sprintf("读取文件夹失败：%v", err))
	}
	if len(frags) == 0 {
		return failed(&rr, domain.ErrCodeNoFragmentsFound,
			fmt.Sprintf("文件夹 %q 内没有 %s*.png 文件", folder.RelPath, scan.FragmentPrefix))
	}
	if obs != nil {
		obs.OnPhaseDone("fragments", map[string]any{"files": len(frags)}, time.Since(fragStarted))
	}

	// 尺寸校验。
	valStarted := nowFunc()
	size, err := compose.ValidateSizes(frags)
	if err != nil {
		rr.Fragments = fragmentResults(frags, size, domain.FragmentStatusFailed)
		return failed(&rr, composeErrCode(err, domain.ErrCodeImageReadFailed), err.Error())
	}
	rr.Fragments = fragmentResults(frags, size, domain.FragmentStatusValidated)
	if obs != nil {
		obs.OnPhaseDone("validate", map[string]any{
			"width":  size.Width,
			"height": size.Height,
		}, time.Since(valStarted))
	}

	// 连接方向：配置预设优先，否则提问。
	axis := eff.Axis
	if axis == "" {
		axis, err = ui.SelectAxis()
		if err != nil {
			return failed(&rr, abortCode(err), fmt.Sprintf("选择连接方向失败：%v", err))
		}
	}
	rr.Axis = string(axis)

	if err := ctx.Err(); err != nil {
		return failed(&rr, domain.ErrCodeIOFailed, fmt.Sprintf("运行被取消：%v", err))
	}

	// 拼接 + 编码。
	compStarted := nowFunc()
	canvas, err := compose.Concat(frags, size, axis)
	if err != nil {
		failAllFragments(&rr)
		return failed(&rr, composeErrCode(err, domain.ErrCodeComposeFailed), err.Error())
	}
	data, err := compose.EncodePNG(canvas)
	if err != nil {
		failAllFragments(&rr)
		return failed(&rr, domain.ErrCodeComposeFailed, fmt.Sprintf("编码 PNG 失败：%v", err))
	}
	outW := canvas.Bounds().Dx()
	outH := canvas.Bounds().Dy()
	if obs != nil {
		obs.OnPhaseDone("compose", map[string]any{
			"width":  outW,
			"height": outH,
			"bytes":  len(data),
		}, time.Since(compStarted))
	}

	// 原子落盘：同秒重名时换随机后缀重试。
	saveStarted := nowFunc()
	outDir := filepath.Join(eff.Path, domain.OutDirName)
	var outName string
	for attempt := 0; ; attempt++ {
		outName = domain.OutputFileName(nowFunc(), randSuffix())
		err = fsx.WriteFileAtomicNoOverwrite(outDir, outName, data)
		if err == nil {
			break
		}
		if errors.Is(err, os.ErrExist) && attempt+1 < maxNameAttempts {
			continue
		}
		failAllFragments(&rr)
		return failed(&rr, domain.ErrCodeIOFailed, fmt.Sprintf("写入输出文件失败：%v", err))
	}

	outRel := filepath.Join(domain.OutDirName, outName)
	rr.Output = domain.OutputResult{Rel: outRel, Width: outW, Height: outH}
	for i := range rr.Fragments {
		rr.Fragments[i].Status = domain.FragmentStatusComposed
	}
	if obs != nil {
		obs.OnPhaseDone("save", map[string]any{"file": outRel}, time.Since(saveStarted))
	}

	// 文件管理器展示：后置便利步骤，任何失败只记录，不改变 Status。
	doReveal := false
	if eff.Reveal != nil {
		doReveal = *eff.Reveal
	} else {
		ok, err := ui.ConfirmReveal()
		if err != nil {
			// 产物已经写出：这里的 EOF 不构成运行失败。
			if obs != nil {
				obs.OnNotice(fmt.Sprintf("跳过文件管理器展示：%v", err))
			}
		} else {
			doReveal = ok
		}
	}
	if doReveal && rev != nil {
		if err := rev.Reveal(filepath.Join(eff.Path, outRel)); err != nil {
			rr.RevealError = fmt.Sprintf("%s：%v", domain.ErrCodeRevealFailed, err)
			if obs != nil {
				obs.OnNotice(fmt.Sprintf("文件管理器调起失败（%s）：%v", rev.Name(), err))
			}
		} else {
			rr.Revealed = true
		}
	}

	rr.FinishedAt = nowFunc().UTC()
	rr.Finalize()
	return rr
}

func failed(rr *domain.RunReport, code, msg string) domain.RunReport {
	rr.Status = domain.StatusFailed
	rr.ErrorCode = code
	rr.ErrorMsg = msg
	rr.FinishedAt = nowFunc().UTC()
	rr.Finalize()
	return *rr
}

// composeErrCode 把校验/拼接错误映射为 error_code；兜底用 fallback。
func composeErrCode(err error, fallback string) string {
	if compose.IsSizeMismatch(err) {
		return domain.ErrCodeSizeMismatch
	}
	if compose.IsReadError(err) {
		return domain.ErrCodeImageReadFailed
	}
	return fallback
}

func abortCode(err error) string {
	if errors.Is(err, prompt.ErrAborted) {
		return domain.ErrCodeInputAborted
	}
	return domain.ErrCodeIOFailed
}

func fragmentResults(frags []domain.Fragment, size domain.CanvasSize, status string) []domain.FragmentResult {
	out := make([]domain.FragmentResult, 0, len(frags))
	for _, f := range frags {
		out = append(out, domain.FragmentResult{
			Src:    f.RelPath,
			Width:  size.Width,
			Height: size.Height,
			Status: status,
		})
	}
	return out
}

func failAllFragments(rr *domain.RunReport) {
	for i := range rr.Fragments {
		rr.Fragments[i].Status = domain.FragmentStatusFailed
	}
}
