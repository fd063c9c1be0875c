package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"go.uber.org/zap"
)

func record(noteID, youtubeID string) model.UploadRecord {
	return model.UploadRecord{
		NoteID:     noteID,
		YouTubeID:  youtubeID,
		YouTubeURL: "https://www.youtube.com/watch?v=" + youtubeID,
		Title:      "测试视频",
		UploadedAt: "2025-01-01 12:00:00",
	}
}

func TestLedger_AppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded.json")
	logger := zap.NewNop()

	led := Load(NewJSONFile(path), logger)
	if led.Len() != 0 {
		t.Fatalf("new ledger should be empty, got %d records", led.Len())
	}
	if led.Contains("note1") {
		t.Error("empty ledger should not contain note1")
	}

	if err := led.Append(record("note1", "yt1")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if !led.Contains("note1") {
		t.Error("ledger should contain note1 after append")
	}

	// 重新加载验证落盘
	led2 := Load(NewJSONFile(path), logger)
	rec, ok := led2.Get("note1")
	if !ok {
		t.Fatal("reloaded ledger should contain note1")
	}
	if rec.YouTubeID != "yt1" {
		t.Errorf("YouTubeID = %q, want %q", rec.YouTubeID, "yt1")
	}
	if rec.NoteID != "note1" {
		t.Errorf("NoteID = %q, want %q", rec.NoteID, "note1")
	}
}

func TestLedger_AppendIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded.json")
	led := Load(NewJSONFile(path), zap.NewNop())

	if err := led.Append(record("note1", "old")); err != nil {
		t.Fatal(err)
	}
	if err := led.Append(record("note1", "new")); err != nil {
		t.Fatal(err)
	}

	// 同一 note_id 落盘后只应有一条记录，且是后写入的
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Records map[string]model.UploadRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Records) != 1 {
		t.Errorf("persisted records = %d, want 1", len(payload.Records))
	}
	if payload.Records["note1"].YouTubeID != "new" {
		t.Errorf("persisted YouTubeID = %q, want %q", payload.Records["note1"].YouTubeID, "new")
	}
}

func TestLedger_CorruptStoreNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	led := Load(NewJSONFile(path), zap.NewNop())
	if led.Len() != 0 {
		t.Errorf("corrupt store should yield empty ledger, got %d records", led.Len())
	}

	// 损坏的文件之后还能正常覆盖写入
	if err := led.Append(record("note1", "yt1")); err != nil {
		t.Fatalf("Append() after corrupt load error = %v", err)
	}
	led2 := Load(NewJSONFile(path), zap.NewNop())
	if !led2.Contains("note1") {
		t.Error("ledger should contain note1 after recovery")
	}
}

func TestLedger_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	led := Load(NewJSONFile(filepath.Join(dir, "uploaded.json")), zap.NewNop())
	if err := led.Append(record("note1", "yt1")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "uploaded.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

type failingStore struct{}

func (failingStore) Load() (map[string]model.UploadRecord, error) {
	return make(map[string]model.UploadRecord), nil
}

func (failingStore) Save(map[string]model.UploadRecord) error {
	return errors.New("disk full")
}

func (failingStore) Close() error { return nil }

func TestLedger_WriteErrorRollsBack(t *testing.T) {
	led := Load(failingStore{}, zap.NewNop())

	err := led.Append(record("note1", "yt1"))
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Append() error = %v, want *WriteError", err)
	}
	// 落盘失败后内存不应残留该记录
	if led.Contains("note1") {
		t.Error("failed append should not leave note1 in memory")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	led := Load(store, zap.NewNop())
	if err := led.Append(record("note1", "old")); err != nil {
		t.Fatal(err)
	}
	if err := led.Append(record("note1", "new")); err != nil {
		t.Fatal(err)
	}
	if err := led.Append(record("note2", "yt2")); err != nil {
		t.Fatal(err)
	}

	records, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("persisted records = %d, want 2", len(records))
	}
	if records["note1"].YouTubeID != "new" {
		t.Errorf("note1 YouTubeID = %q, want %q", records["note1"].YouTubeID, "new")
	}
}
