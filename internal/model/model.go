package model

// TimeLayout 上传时间的记录格式
const TimeLayout = "2006-01-02 15:04:05"

// 视频流编码格式
const (
	CodecH264 = "h264"
	CodecH265 = "h265"
)

// SourceItem 小红书视频笔记，抓取后不再修改
type SourceItem struct {
	NoteID      string `json:"note_id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	URL         string `json:"url"`
	XsecToken   string `json:"xsec_token"`
}

// MediaStream 单个候选视频流，只在选流阶段存在
type MediaStream struct {
	Codec string // h264 或 h265
	Desc  string // streamDesc 原文，用于识别水印
	URL   string
	Rank  int // 清晰度排名，越大越优先
}

// Note 笔记页面的解析结果
type Note struct {
	Title       string
	Description string
	Duration    int // 秒
	Streams     []MediaStream
}

// UploadRecord 一条上传记录，note_id 作为 records 的键不重复存储
type UploadRecord struct {
	NoteID     string `json:"-"`
	YouTubeID  string `json:"youtube_id"`
	YouTubeURL string `json:"youtube_url"`
	Title      string `json:"title"`
	UploadedAt string `json:"uploaded_at"`
}

// DestinationMetadata 上传到 YouTube 的视频元数据
type DestinationMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string // public、unlisted 或 private
}

// UploadResult 上传成功后的目的平台标识
type UploadResult struct {
	VideoID string
	URL     string
}

// FailedVideo 批量搬运中单个失败项的诊断信息
type FailedVideo struct {
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
	Error  string `json:"error"`
}

// BatchResult 一次批量搬运的汇总，只在内存中存在
type BatchResult struct {
	Total        int           `json:"total"`
	Skipped      int           `json:"skipped"`
	SuccessCount int           `json:"success_count"`
	Failed       int           `json:"failed"`
	FailedVideos []FailedVideo `json:"failed_videos,omitempty"`
}
