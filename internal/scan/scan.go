package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/SegCat/internal/domain"
)

// FragmentPrefix 是碎片文件名的固定前缀；扩展名固定为 .png（大小写不敏感）。
const FragmentPrefix = "segment_"

// Folders 扫描 root 下直接包含图片文件的文件夹，并应用目录排除规则。
//
// 规则（硬约束）：
// - 永久排除：产物目录 concatenated/（任意深度，避免把上次产物再拼一遍）
// - excludeDirs：来自配置文件，均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
//
// 注意：扫描阶段只看扩展名，不读文件内容；root 本身也可以是候选（RelPath="."）。
func Folders(root string, excludeDirs []string) ([]domain.Folder, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	counts := make(map[string]int, 16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		// 统一的排除判断：目录用 SkipDir，文件则直接跳过。
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !isImageExt(ext) {
			return nil
		}
		counts[filepath.Dir(path)]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	folders := make([]domain.Folder, 0, len(counts))
	for dir, n := range counts {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return nil, err
		}
		folders = append(folders, domain.Folder{
			AbsPath:    dir,
			RelPath:    rel,
			ImageCount: n,
		})
	}

	// 强制稳定输出，避免 map 遍历顺序带来的不确定性。
	sort.Slice(folders, func(i, j int) bool { return folders[i].RelPath < folders[j].RelPath })
	return folders, nil
}

// Fragments 列出 folder 内的碎片文件（segment_*.png），按文件名字典序。
// 该顺序就是最终拼接顺序。
func Fragments(folder domain.Folder) ([]domain.Fragment, error) {
	entries, err := os.ReadDir(folder.AbsPath)
	if err != nil {
		return nil, err
	}

	frags := make([]domain.Fragment, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isFragmentName(name) {
			continue
		}
		frags = append(frags, domain.Fragment{
			AbsPath: filepath.Join(folder.AbsPath, name),
			RelPath: filepath.Join(folder.RelPath, name),
			Name:    name,
		})
	}

	sort.Slice(frags, func(i, j int) bool { return frags[i].Name < frags[j].Name })
	return frags, nil
}

func isFragmentName(name string) bool {
	return strings.HasPrefix(name, FragmentPrefix) &&
		strings.EqualFold(filepath.Ext(name), ".png")
}

func isImageExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tiff":
		return true
	default:
		return false
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	outDir := filepath.Join(root, domain.OutDirName)

	excluded := make([]string, 0, 1+len(excludeDirs))
	excluded = append(excluded, filepath.Clean(outDir))

	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	// 产物目录可能出现在任意深度（例如用户把某个子树连同产物一起拷贝进来）。
	return filepath.Base(path) == domain.OutDirName
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
