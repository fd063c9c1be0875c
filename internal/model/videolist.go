package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// VideoList video_list.json 的结构，由列表抓取生成，批量搬运原样消费
type VideoList struct {
	UserID     string       `json:"user_id"`
	FetchTime  string       `json:"fetch_time"`
	TotalCount int          `json:"total_count"`
	Videos     []SourceItem `json:"videos"`
}

// ReadVideoList 读取视频列表文件
func ReadVideoList(path string) (*VideoList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video list: %w", err)
	}

	var list VideoList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse video list: %w", err)
	}
	return &list, nil
}

// Write 写出视频列表文件
func (l *VideoList) Write(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal video list: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write video list: %w", err)
	}
	return nil
}
