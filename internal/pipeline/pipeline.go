package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/all-the-day/xhs-to-youtube/internal/ledger"
	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"github.com/all-the-day/xhs-to-youtube/internal/stream"
	"go.uber.org/zap"
)

// Fetcher 源平台笔记抓取
type Fetcher interface {
	FetchNote(ctx context.Context, url string) (*model.Note, error)
}

// Acquirer 把选中的视频流下载到本地
type Acquirer interface {
	Fetch(ctx context.Context, streamURL string, progress func(done, total int64)) (string, error)
}

// Uploader 目的平台上传
type Uploader interface {
	Upload(ctx context.Context, path string, meta model.DestinationMetadata, progress func(frac float64)) (*model.UploadResult, error)
}

// ProgressFunc 进度回调，percent 取 0~100，外层界面订阅
type ProgressFunc func(percent float64, status string)

// Defaults 上传元数据的默认值，来自配置
type Defaults struct {
	Tags       []string
	CategoryID string
	Privacy    string
}

// Options 单次搬运的可选项
type Options struct {
	TitleEN    string // 英文标题，生成双语标题
	CustomDesc string
	Tags       []string
	Privacy    string
	KeepVideo  bool
}

// Result 单次搬运成功的结果
type Result struct {
	NoteID   string
	VideoID  string
	VideoURL string
}

// Pipeline 单条搬运流程：抓取 → 选流 → 下载 → 上传 → 记账 → 清理。
// 任一环节出错整条失败，错误类型由各协作方定义，批量层据此决策。
type Pipeline struct {
	fetcher  Fetcher
	acquirer Acquirer
	uploader Uploader
	ledger   *ledger.Ledger
	defaults Defaults
	progress ProgressFunc
	logger   *zap.Logger
}

func New(fetcher Fetcher, acquirer Acquirer, uploader Uploader, led *ledger.Ledger, defaults Defaults, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		acquirer: acquirer,
		uploader: uploader,
		ledger:   led,
		defaults: defaults,
		logger:   logger,
	}
}

// SetProgress 注册进度回调
func (p *Pipeline) SetProgress(fn ProgressFunc) {
	p.progress = fn
}

func (p *Pipeline) report(percent float64, status string) {
	if p.progress != nil {
		p.progress(percent, status)
	}
}

// Transfer 搬运一条笔记
func (p *Pipeline) Transfer(ctx context.Context, item model.SourceItem, opts Options) (*Result, error) {
	p.report(0, "获取视频信息...")
	note, err := p.fetcher.FetchNote(ctx, item.URL)
	if err != nil {
		return nil, err
	}

	// 列表里带的标题和描述优先，页面解析只作补充
	title := item.Title
	if title == "" {
		title = note.Title
	}
	desc := item.Description
	if desc == "" {
		desc = note.Description
	}

	chosen, err := stream.Select(note.Streams)
	if err != nil {
		return nil, err
	}
	if stream.Watermarked(chosen.Desc) {
		p.logger.Warn("no unwatermarked stream, using fallback", zap.String("desc", chosen.Desc))
	} else {
		p.logger.Info("stream selected",
			zap.String("codec", chosen.Codec),
			zap.String("desc", chosen.Desc))
	}

	p.report(10, "开始下载视频...")
	path, err := p.acquirer.Fetch(ctx, chosen.URL, func(done, total int64) {
		if total > 0 {
			// 下载进度占 10% 到 50%
			p.report(10+float64(done)/float64(total)*40, fmt.Sprintf("下载中... %d%%", done*100/total))
		}
	})
	if err != nil {
		return nil, err
	}
	if !opts.KeepVideo {
		// 上传成功或失败都清掉本地缓存，删除失败只记日志不影响结果
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				p.logger.Warn("remove local video failed", zap.Error(err), zap.String("path", path))
			}
		}()
	}

	meta := p.buildMetadata(title, desc, opts)
	p.report(60, "准备上传...")
	uploaded, err := p.uploader.Upload(ctx, path, meta, func(frac float64) {
		// 上传进度占 60% 到 100%
		p.report(60+frac*40, fmt.Sprintf("上传中... %d%%", int(frac*100)))
	})
	if err != nil {
		return nil, err
	}

	// 上传已成功但记账失败仍按搬运失败上报：未落账的成功下次会被重传，
	// 这是明示接受的 at-least-once 重复，不能悄悄吞掉
	if item.NoteID != "" {
		rec := model.UploadRecord{
			NoteID:     item.NoteID,
			YouTubeID:  uploaded.VideoID,
			YouTubeURL: uploaded.URL,
			Title:      title,
			UploadedAt: time.Now().Format(model.TimeLayout),
		}
		if err := p.ledger.Append(rec); err != nil {
			return nil, err
		}
	}

	p.report(100, "完成!")
	p.logger.Info("transfer complete",
		zap.String("note_id", item.NoteID),
		zap.String("url", uploaded.URL))
	return &Result{
		NoteID:   item.NoteID,
		VideoID:  uploaded.VideoID,
		VideoURL: uploaded.URL,
	}, nil
}
