package xhs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultBaseURL = "https://www.xiaohongshu.com"

// FetchError 获取或解析源平台页面失败
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var (
	// 流数组截取到下一个编码族或对象结尾为止，笔记页面里 h264 后面跟 h265，
	// h265 后面可能跟 av1 或 h266
	h264BlockRe = regexp.MustCompile(`(?s)"h264"\s*:\s*\[(.*?)\](?:\s*,\s*"h265"|\s*\})`)
	h265BlockRe = regexp.MustCompile(`(?s)"h265"\s*:\s*\[(.*?)\](?:\s*,\s*"av1"|\s*,\s*"h266"|\s*\})`)

	masterURLRe  = regexp.MustCompile(`"masterUrl"\s*:\s*"([^"]+)"`)
	streamDescRe = regexp.MustCompile(`"streamDesc"\s*:\s*"([^"]+)"`)

	htmlTitleRe    = regexp.MustCompile(`<title>([^<]+)</title>`)
	displayTitleRe = regexp.MustCompile(`"displayTitle"\s*:\s*"([^"]*)"`)
	noteDescRe     = regexp.MustCompile(`"desc"\s*:\s*"([^"\\]*(?:\\.[^"\\]*)*)"`)
	durationRe     = regexp.MustCompile(`"duration"\s*:\s*(\d+)`)
	noteIDRe       = regexp.MustCompile(`explore/([0-9a-z]+)`)
)

// Client 小红书页面抓取客户端
type Client struct {
	http    *http.Client
	cookies map[string]string
	baseURL string
	logger  *zap.Logger
}

// NewClient 创建客户端，cookiesPath 指向 Netscape 格式的 cookies.txt
func NewClient(cookiesPath string, logger *zap.Logger) (*Client, error) {
	cookies, err := LoadCookies(cookiesPath)
	if err != nil {
		return nil, err
	}
	logger.Info("cookies loaded", zap.Int("count", len(cookies)))

	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		cookies: cookies,
		baseURL: defaultBaseURL,
		logger:  logger,
	}, nil
}

// NoteIDFromURL 从笔记 URL 中提取 note_id，提取不到时返回空串
func NoteIDFromURL(url string) string {
	if m := noteIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// FetchNote 抓取笔记页面并解析标题、描述和候选视频流
func (c *Client) FetchNote(ctx context.Context, url string) (*model.Note, error) {
	page, err := c.get(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	note := &model.Note{
		Title:       parseTitle(page),
		Description: parseDescription(page),
		Duration:    parseDuration(page),
		Streams:     parseStreams(page),
	}

	c.logger.Debug("note page parsed",
		zap.String("title", note.Title),
		zap.Int("streams", len(note.Streams)))
	return note, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseStreams 提取 h264/h265 流数组。页面里的流按清晰度从高到低排列，
// Rank 按出现顺序递减保留这一信息。
func parseStreams(page string) []model.MediaStream {
	var streams []model.MediaStream
	streams = append(streams, parseFamily(page, h264BlockRe, model.CodecH264)...)
	streams = append(streams, parseFamily(page, h265BlockRe, model.CodecH265)...)
	return streams
}

func parseFamily(page string, blockRe *regexp.Regexp, codec string) []model.MediaStream {
	block := blockRe.FindStringSubmatch(page)
	if block == nil {
		return nil
	}

	urls := masterURLRe.FindAllStringSubmatch(block[1], -1)
	descs := streamDescRe.FindAllStringSubmatch(block[1], -1)
	n := len(urls)
	if len(descs) < n {
		n = len(descs)
	}

	streams := make([]model.MediaStream, 0, n)
	for i := 0; i < n; i++ {
		streams = append(streams, model.MediaStream{
			Codec: codec,
			Desc:  descs[i][1],
			URL:   decodeEscapes(urls[i][1]),
			Rank:  n - i,
		})
	}
	return streams
}

func parseTitle(page string) string {
	title := ""
	if m := htmlTitleRe.FindStringSubmatch(page); m != nil {
		title = strings.TrimSpace(m[1])
		// 页面标题格式通常是「标题 - 小红书」
		if idx := strings.Index(title, " - 小红书"); idx >= 0 {
			title = strings.TrimSpace(title[:idx])
		} else if strings.Contains(title, "小红书") && len([]rune(title)) > 10 {
			title = strings.TrimSpace(strings.ReplaceAll(title, "小红书", ""))
		}
	}

	// HTML 标题无效时退回 JSON 里的 displayTitle
	if title == "" || strings.Contains(title, "ICP") {
		if m := displayTitleRe.FindStringSubmatch(page); m != nil && m[1] != "" {
			title = decodeEscapes(m[1])
		}
	}
	if title == "" {
		title = "未知标题"
	}
	return title
}

func parseDescription(page string) string {
	if m := noteDescRe.FindStringSubmatch(page); m != nil {
		return decodeEscapes(m[1])
	}
	return ""
}

func parseDuration(page string) int {
	m := durationRe.FindStringSubmatch(page)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	// duration 字段可能是秒也可能是毫秒
	if v >= 1000 {
		v /= 1000
	}
	return v
}

// decodeEscapes 还原 JSON 字符串转义（/ 之类），失败时原样返回
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	unquoted, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `\/`, `/`) + `"`)
	if err != nil {
		return s
	}
	return unquoted
}
