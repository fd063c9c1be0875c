package stream

import (
	"errors"
	"strings"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
)

// ErrNoStream 候选流为空，可能是图文笔记或未登录
var ErrNoStream = errors.New("no video stream found")

// Watermarked 判断流描述是否带水印标记
func Watermarked(desc string) bool {
	return strings.HasPrefix(desc, "WM") || strings.Contains(desc, "WM_")
}

// Select 从候选流中挑选最佳版本。
// 优先级严格为：无水印 h265 > 无水印 h264 > 任意 h265 > 任意 h264，
// 高优先级分组只要非空就直接胜出，组内按 Rank 取最高。
// h265 流的描述从未出现过水印标记，所以只要存在无水印流就优先选它。
func Select(candidates []model.MediaStream) (model.MediaStream, error) {
	if len(candidates) == 0 {
		return model.MediaStream{}, ErrNoStream
	}

	var h265Clean, h264Clean, h265All, h264All []model.MediaStream
	for _, s := range candidates {
		clean := !Watermarked(s.Desc)
		if s.Codec == model.CodecH265 {
			h265All = append(h265All, s)
			if clean {
				h265Clean = append(h265Clean, s)
			}
		} else {
			h264All = append(h264All, s)
			if clean {
				h264Clean = append(h264Clean, s)
			}
		}
	}

	for _, group := range [][]model.MediaStream{h265Clean, h264Clean, h265All, h264All} {
		if len(group) > 0 {
			return best(group), nil
		}
	}
	return model.MediaStream{}, ErrNoStream
}

func best(group []model.MediaStream) model.MediaStream {
	chosen := group[0]
	for _, s := range group[1:] {
		if s.Rank > chosen.Rank {
			chosen = s
		}
	}
	return chosen
}
