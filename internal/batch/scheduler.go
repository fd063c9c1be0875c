package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/all-the-day/xhs-to-youtube/internal/ledger"
	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"github.com/all-the-day/xhs-to-youtube/internal/pipeline"
	"github.com/all-the-day/xhs-to-youtube/internal/youtube"
	"go.uber.org/zap"
)

// Transferer 单条搬运，由 pipeline 实现
type Transferer interface {
	Transfer(ctx context.Context, item model.SourceItem, opts pipeline.Options) (*pipeline.Result, error)
}

// Options 一次批量运行的参数
type Options struct {
	Force       bool // 忽略已上传记录重新搬运
	IntervalMin time.Duration
	IntervalMax time.Duration
	Privacy     string
	KeepVideo   bool
}

// Scheduler 按输入顺序逐条搬运：已记账的跳过，单条失败不影响后续，
// 相邻两次尝试之间随机等待以避免请求过于规律
type Scheduler struct {
	transferer Transferer
	ledger     *ledger.Ledger
	logger     *zap.Logger
	sleep      func(time.Duration)
	rng        *rand.Rand
}

func New(transferer Transferer, led *ledger.Ledger, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		transferer: transferer,
		ledger:     led,
		logger:     logger,
		sleep:      time.Sleep,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run 执行一批搬运并返回汇总。除认证失效外任何单条错误都只记入
// 失败列表；认证失效意味着剩下的条目全都会失败，立即带着部分汇总返回。
func (s *Scheduler) Run(ctx context.Context, items []model.SourceItem, opts Options) (*model.BatchResult, error) {
	result := &model.BatchResult{Total: len(items)}
	if len(items) == 0 {
		s.logger.Warn("video list is empty")
		return result, nil
	}
	s.logger.Info("batch started",
		zap.Int("total", len(items)),
		zap.Int("ledgered", s.ledger.Len()))

	attempted := false
	for i, item := range items {
		s.logger.Info(fmt.Sprintf("processing %d/%d", i+1, len(items)),
			zap.String("note_id", item.NoteID),
			zap.String("title", item.Title))

		if !opts.Force && s.ledger.Contains(item.NoteID) {
			rec, _ := s.ledger.Get(item.NoteID)
			s.logger.Info("already uploaded, skipping", zap.String("url", rec.YouTubeURL))
			result.Skipped++
			continue
		}

		if item.URL == "" {
			result.Failed++
			result.FailedVideos = append(result.FailedVideos, model.FailedVideo{
				NoteID: item.NoteID,
				Title:  item.Title,
				Error:  "missing video url",
			})
			continue
		}

		// 第一次尝试之前不等待
		if attempted {
			delay := s.randomDelay(opts.IntervalMin, opts.IntervalMax)
			s.logger.Info("pacing before next transfer", zap.Duration("delay", delay))
			s.sleep(delay)
		}
		attempted = true

		res, err := s.transferer.Transfer(ctx, item, pipeline.Options{
			Privacy:   opts.Privacy,
			KeepVideo: opts.KeepVideo,
		})
		if err != nil {
			result.Failed++
			result.FailedVideos = append(result.FailedVideos, model.FailedVideo{
				NoteID: item.NoteID,
				Title:  item.Title,
				Error:  err.Error(),
			})

			var authErr *youtube.AuthError
			if errors.As(err, &authErr) {
				// 会话对剩下的条目同样无效，继续只会烧时间和配额
				s.logger.Error("authorization invalid, halting batch", zap.Error(err))
				return result, fmt.Errorf("batch halted, re-run -auth to continue: %w", err)
			}
			s.logger.Error("transfer failed",
				zap.String("note_id", item.NoteID),
				zap.Error(err))
			continue
		}

		result.SuccessCount++
		s.logger.Info("transfer succeeded", zap.String("url", res.VideoURL))
	}

	s.logger.Info("batch finished",
		zap.Int("total", result.Total),
		zap.Int("success", result.SuccessCount),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Scheduler) randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(s.rng.Int63n(int64(max-min)+1))
}
