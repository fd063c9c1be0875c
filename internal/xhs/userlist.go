package xhs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"go.uber.org/zap"
)

const stateMarker = "window.__INITIAL_STATE__="

var userIDRe = regexp.MustCompile(`user/profile/([a-f0-9]+)`)

// FetchUserVideos 抓取用户主页的全部视频笔记，结果可直接写成 video_list.json
func (c *Client) FetchUserVideos(ctx context.Context, userURL string) (*model.VideoList, error) {
	m := userIDRe.FindStringSubmatch(userURL)
	if m == nil {
		return nil, &FetchError{URL: userURL, Err: fmt.Errorf("no user id in url")}
	}
	secUserID := m[1]
	c.logger.Info("fetching user videos", zap.String("user_id", secUserID))

	state, err := c.fetchProfileState(ctx, secUserID)
	if err != nil {
		return nil, &FetchError{URL: userURL, Err: err}
	}

	// 页面数据里的 userId 才是真实 ID，用加密 ID 请求时笔记可能为空
	userID := secUserID
	if user, ok := state["user"].(map[string]any); ok {
		if info, ok := unwrapVue(user["userInfo"], 0).(map[string]any); ok {
			if id := str(info, "userId"); id != "" {
				userID = id
			}
		}
	}
	if userID != secUserID {
		c.logger.Info("refetching with real user id", zap.String("user_id", userID))
		if refetched, err := c.fetchProfileState(ctx, userID); err == nil {
			state = refetched
		}
	}

	var notesData any
	if user, ok := state["user"].(map[string]any); ok {
		notesData = unwrapVue(user["notes"], 0)
	}

	var videos []model.SourceItem
	for _, note := range extractNotes(notesData) {
		card, ok := note["noteCard"].(map[string]any)
		if !ok || str(card, "type") != "video" {
			continue
		}
		noteID := str(card, "noteId")
		if noteID == "" {
			continue
		}

		title := str(card, "displayTitle")
		if title == "" {
			title = str(card, "title")
		}
		token := str(card, "xsecToken")

		videos = append(videos, model.SourceItem{
			NoteID:      noteID,
			Title:       title,
			Description: str(card, "desc"),
			URL:         c.noteURL(noteID, token),
			XsecToken:   token,
		})
	}
	c.logger.Info("user videos fetched", zap.Int("count", len(videos)))

	return &model.VideoList{
		UserID:     userID,
		FetchTime:  time.Now().Format(model.TimeLayout),
		TotalCount: len(videos),
		Videos:     videos,
	}, nil
}

// fetchProfileState 抓取用户主页并解析 window.__INITIAL_STATE__
func (c *Client) fetchProfileState(ctx context.Context, userID string) (map[string]any, error) {
	page, err := c.get(ctx, c.baseURL+"/user/profile/"+userID)
	if err != nil {
		return nil, err
	}

	idx := strings.Index(page, stateMarker)
	if idx < 0 {
		return nil, fmt.Errorf("initial state not found, login may be required")
	}
	jsonText := page[idx+len(stateMarker):]

	// JSON 不认识 JavaScript 的 undefined
	jsonText = strings.ReplaceAll(jsonText, ":undefined", ":null")
	jsonText = strings.ReplaceAll(jsonText, ",undefined", ",null")

	// Decoder 只消费第一个完整的 JSON 值，后面跟着的脚本不影响解析
	var state map[string]any
	if err := json.NewDecoder(strings.NewReader(jsonText)).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse initial state: %w", err)
	}
	return state, nil
}

func (c *Client) noteURL(noteID, xsecToken string) string {
	if xsecToken != "" {
		return fmt.Sprintf("%s/explore/%s?xsec_token=%s&xsec_source=pc_user", c.baseURL, noteID, xsecToken)
	}
	return fmt.Sprintf("%s/explore/%s", c.baseURL, noteID)
}

// unwrapVue 解包 Vue 3 响应式对象
func unwrapVue(v any, depth int) any {
	if depth > 5 || v == nil {
		return v
	}
	if m, ok := v.(map[string]any); ok {
		if raw, ok := m["_rawValue"]; ok {
			return unwrapVue(raw, depth+1)
		}
		if val, ok := m["_value"]; ok {
			return unwrapVue(val, depth+1)
		}
	}
	return v
}

// extractNotes 递归提取带 noteCard 的笔记对象，数组可能嵌套
func extractNotes(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var notes []map[string]any
	for _, item := range list {
		switch it := item.(type) {
		case map[string]any:
			if _, ok := it["noteCard"]; ok {
				notes = append(notes, it)
			}
		case []any:
			notes = append(notes, extractNotes(it)...)
		}
	}
	return notes
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
