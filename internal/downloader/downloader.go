package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquisitionError 视频文件下载失败（网络或磁盘写入）
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Downloader 把选中的视频流下载到本地目录
type Downloader struct {
	http   *http.Client
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Downloader {
	return &Downloader{
		http:   &http.Client{Timeout: 120 * time.Second},
		dir:    dir,
		logger: logger,
	}
}

// Fetch 下载视频流，返回本地文件路径。
// progress 每写入一块数据回调一次，total 为 0 表示服务端没给长度。
func (d *Downloader) Fetch(ctx context.Context, streamURL string, progress func(done, total int64)) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", &AcquisitionError{URL: streamURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", &AcquisitionError{URL: streamURL, Err: err}
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", &AcquisitionError{URL: streamURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AcquisitionError{URL: streamURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	path := filepath.Join(d.dir, uuid.NewString()[:8]+".mp4")
	f, err := os.Create(path)
	if err != nil {
		return "", &AcquisitionError{URL: streamURL, Err: err}
	}

	total := resp.ContentLength
	var done int64
	buf := make([]byte, 8192)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				os.Remove(path)
				return "", &AcquisitionError{URL: streamURL, Err: writeErr}
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(path)
			return "", &AcquisitionError{URL: streamURL, Err: readErr}
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &AcquisitionError{URL: streamURL, Err: err}
	}

	d.logger.Info("video downloaded",
		zap.String("path", path),
		zap.Float64("size_mb", float64(done)/1024/1024))
	return path, nil
}
