package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	// 容忍后缀骗人的碎片：文件名叫 .png、内容是 JPEG/GIF 时按内容解码。
	_ "image/gif"
	_ "image/jpeg"

	"github.com/John-Robertt/SegCat/internal/domain"
)

// SizeMismatchError 表示某个碎片的尺寸与首个碎片不一致。
// 上层把它映射为 error_code=size_mismatch。
type SizeMismatchError struct {
	Path string
	Got  domain.CanvasSize
	Want domain.CanvasSize
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("碎片尺寸不一致：%q 为 %s（期望 %s）", e.Path, e.Got, e.Want)
}

func IsSizeMismatch(err error) bool {
	var e *SizeMismatchError
	return errors.As(err, &e)
}

// ReadError 表示碎片文件无法读取或解码（损坏/无法识别的格式/权限问题等）。
// 上层把它映射为 error_code=image_read_failed。
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("读取图片失败：%q：%v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func IsReadError(err error) bool {
	var e *ReadError
	return errors.As(err, &e)
}

// ValidateSizes 校验集合内所有碎片共享同一像素尺寸，并返回该尺寸。
//
// 约束：
// - 集合非空；以首个碎片的尺寸为基准
// - 只解码图片头（DecodeConfig），不读像素数据
// - 任何一个文件读不了/解不开，返回 ReadError 而不是 panic
func ValidateSizes(frags []domain.Fragment) (domain.CanvasSize, error) {
	if len(frags) == 0 {
		return domain.CanvasSize{}, errors.New("碎片集合为空")
	}

	base, err := readSize(frags[0].AbsPath)
	if err != nil {
		return domain.CanvasSize{}, err
	}

	for _, f := range frags[1:] {
		got, err := readSize(f.AbsPath)
		if err != nil {
			return domain.CanvasSize{}, err
		}
		if got != base {
			return domain.CanvasSize{}, &SizeMismatchError{Path: f.AbsPath, Got: got, Want: base}
		}
	}

	if base.Width <= 0 || base.Height <= 0 {
		return domain.CanvasSize{}, &ReadError{Path: frags[0].AbsPath, Err: errors.New("图片尺寸无效")}
	}
	return base, nil
}

// Concat 按 axis 把已校验的碎片拼接到一张 RGBA 画布上。
//
// - 横向：画布 (w*n, h)，碎片 i 粘贴在 (i*w, 0)
// - 纵向：画布 (w, h*n)，碎片 i 粘贴在 (0, i*h)
// - draw.Src 粘贴：alpha 通道原样保留
// - 任何一个碎片解码失败，整体失败（不输出半成品）
func Concat(frags []domain.Fragment, size domain.CanvasSize, axis domain.Axis) (*image.RGBA, error) {
	if len(frags) == 0 {
		return nil, errors.New("碎片集合为空")
	}

	w, h := size.Width, size.Height
	var canvas *image.RGBA
	switch axis {
	case domain.AxisHorizontal:
		canvas = image.NewRGBA(image.Rect(0, 0, w*len(frags), h))
	case domain.AxisVertical:
		canvas = image.NewRGBA(image.Rect(0, 0, w, h*len(frags)))
	default:
		return nil, fmt.Errorf("非法 axis：%q", axis)
	}

	for i, f := range frags {
		img, err := decodeFile(f.AbsPath)
		if err != nil {
			return nil, err
		}

		b := img.Bounds()
		// 校验与拼接之间文件可能被替换：尺寸再对不上就拒绝，而不是拼出错位的画布。
		if b.Dx() != w || b.Dy() != h {
			return nil, &SizeMismatchError{
				Path: f.AbsPath,
				Got:  domain.CanvasSize{Width: b.Dx(), Height: b.Dy()},
				Want: size,
			}
		}

		var dst image.Rectangle
		if axis == domain.AxisHorizontal {
			dst = image.Rect(i*w, 0, (i+1)*w, h)
		} else {
			dst = image.Rect(0, i*h, w, (i+1)*h)
		}
		draw.Draw(canvas, dst, img, b.Min, draw.Src)
	}

	return canvas, nil
}

// EncodePNG 编码画布为 PNG 字节（由上层负责原子落盘）。
func EncodePNG(m image.Image) ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, m); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// readSize 只读图片头拿 (width, height)；句柄在本函数内保证释放。
func readSize(path string) (domain.CanvasSize, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.CanvasSize{}, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return domain.CanvasSize{}, &ReadError{Path: path, Err: err}
	}
	return domain.CanvasSize{Width: cfg.Width, Height: cfg.Height}, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return img, nil
}
