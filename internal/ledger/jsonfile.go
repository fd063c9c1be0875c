package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
)

// jsonFile 默认后端：uploaded.json 整文件重写，临时文件 + rename 原子替换，
// 内容缩进便于人工查看和手工修复
type jsonFile struct {
	path string
}

// NewJSONFile 创建 JSON 文件后端
func NewJSONFile(path string) Store {
	return &jsonFile{path: path}
}

type jsonPayload struct {
	Records map[string]model.UploadRecord `json:"records"`
}

func (s *jsonFile) Load() (map[string]model.UploadRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]model.UploadRecord), nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var payload jsonPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse ledger file: %w", err)
	}

	records := make(map[string]model.UploadRecord, len(payload.Records))
	for noteID, rec := range payload.Records {
		rec.NoteID = noteID
		records[noteID] = rec
	}
	return records, nil
}

func (s *jsonFile) Save(records map[string]model.UploadRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(jsonPayload{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *jsonFile) Close() error {
	return nil
}
