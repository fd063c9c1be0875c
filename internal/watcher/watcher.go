package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// BatchRunner 由上层注入，列表更新后触发一次批量搬运
type BatchRunner interface {
	RunBatch() error
}

// Watcher 监听视频列表文件，列表抓取工具重写文件后自动开始批量搬运。
// 编辑器和抓取都可能连续产生多次写事件，debounce 窗口内只触发一次。
type Watcher struct {
	watcher  *fsnotify.Watcher
	runner   BatchRunner
	listPath string
	debounce time.Duration
	logger   *zap.Logger
	mu       sync.Mutex
	lastRun  time.Time
}

func New(listPath string, debounce time.Duration, runner BatchRunner, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		runner:   runner,
		listPath: filepath.Clean(listPath),
		debounce: debounce,
		logger:   logger,
	}, nil
}

func (w *Watcher) Start() error {
	// 监听所在目录而不是文件本身，整文件替换（rename 覆盖）也能收到事件
	if err := w.watcher.Add(filepath.Dir(w.listPath)); err != nil {
		return err
	}

	go w.watchLoop()
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.listPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.handleListChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleListChange() {
	w.mu.Lock()
	if time.Since(w.lastRun) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastRun = time.Now()
	w.mu.Unlock()

	w.logger.Info("video list changed, starting batch", zap.String("path", w.listPath))
	if err := w.runner.RunBatch(); err != nil {
		w.logger.Error("batch run failed", zap.Error(err))
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
