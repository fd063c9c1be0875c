package xhs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// 主页数据带 Vue 响应式包装、嵌套数组和 undefined，解析要能全部扛住
const profilePage = `<html><body><script>window.__INITIAL_STATE__={"user":{"userInfo":{"userId":"%s","nickname":undefined},"notes":{"_rawValue":[[{"noteCard":{"type":"video","noteId":"note01","displayTitle":"第一条","xsecToken":"tok1","desc":"描述一"}},{"noteCard":{"type":"normal","noteId":"note02","displayTitle":"图文"}}],[{"noteCard":{"type":"video","noteId":"note03","title":"第三条","xsecToken":"","desc":""}}]]}},"foo":undefined};window.other=1;</script></body></html>`

func TestClient_FetchUserVideos(t *testing.T) {
	const realID = "99aabb0011"
	requests := make([]string, 0, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		fmt.Fprintf(w, profilePage, realID)
	}))
	defer srv.Close()

	c := &Client{
		http:    &http.Client{Timeout: 5 * time.Second},
		cookies: map[string]string{},
		baseURL: srv.URL,
		logger:  zap.NewNop(),
	}

	list, err := c.FetchUserVideos(context.Background(), srv.URL+"/user/profile/deadbeef01")
	if err != nil {
		t.Fatalf("FetchUserVideos() error = %v", err)
	}

	if list.UserID != realID {
		t.Errorf("UserID = %q, want %q", list.UserID, realID)
	}
	// 真实 userId 与 URL 里的不同时应重新请求一次
	if len(requests) != 2 || !strings.HasSuffix(requests[1], realID) {
		t.Errorf("requests = %v, want refetch with real user id", requests)
	}

	if list.TotalCount != 2 || len(list.Videos) != 2 {
		t.Fatalf("TotalCount = %d, videos = %d, want 2 (图文笔记应被过滤)", list.TotalCount, len(list.Videos))
	}

	first := list.Videos[0]
	if first.NoteID != "note01" || first.Title != "第一条" {
		t.Errorf("unexpected first video: %+v", first)
	}
	if !strings.Contains(first.URL, "/explore/note01?xsec_token=tok1") {
		t.Errorf("URL should carry xsec_token: %q", first.URL)
	}

	// displayTitle 缺失时退回 title，无 token 时 URL 不带查询参数
	third := list.Videos[1]
	if third.Title != "第三条" {
		t.Errorf("Title = %q, want 第三条", third.Title)
	}
	if strings.Contains(third.URL, "?") {
		t.Errorf("URL without token should have no query: %q", third.URL)
	}
}

func TestClient_FetchUserVideosBadURL(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	if _, err := c.FetchUserVideos(context.Background(), "https://example.com/nothing"); err == nil {
		t.Fatal("expected error for url without user id")
	}
}

func TestClient_FetchUserVideosNoState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>请先登录</html>"))
	}))
	defer srv.Close()

	c := &Client{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: srv.URL,
		logger:  zap.NewNop(),
	}
	if _, err := c.FetchUserVideos(context.Background(), srv.URL+"/user/profile/deadbeef01"); err == nil {
		t.Fatal("expected error when initial state is missing")
	}
}
