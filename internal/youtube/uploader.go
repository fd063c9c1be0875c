package youtube

import (
	"context"
	"os"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Uploader 通过 YouTube Data API v3 上传视频
type Uploader struct {
	service *yt.Service
	logger  *zap.Logger
}

func NewUploader(ctx context.Context, auth *Authenticator, logger *zap.Logger) (*Uploader, error) {
	client, err := auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	service, err := yt.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	return &Uploader{service: service, logger: logger}, nil
}

// Upload 分块断点上传本地视频文件，progress 收到 0~1 的完成比例
func (u *Uploader) Upload(ctx context.Context, path string, meta model.DestinationMetadata, progress func(frac float64)) (*model.UploadResult, error) {
	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           meta.Privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	defer f.Close()

	u.logger.Info("uploading to youtube",
		zap.String("title", meta.Title),
		zap.String("privacy", meta.Privacy))

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f, googleapi.ChunkSize(1<<20)).
		ProgressUpdater(func(current, total int64) {
			if progress != nil && total > 0 {
				progress(float64(current) / float64(total))
			}
		})

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	result := &model.UploadResult{
		VideoID: resp.Id,
		URL:     watchURLPrefix + resp.Id,
	}
	u.logger.Info("upload complete", zap.String("url", result.URL))
	return result, nil
}
