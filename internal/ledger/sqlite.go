package ledger

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// sqliteStore 可选后端：note_id 为主键，整表在一个事务里重写，
// 与 JSON 后端保持同样的覆盖语义
type sqliteStore struct {
	db *sql.DB
}

// NewSQLite 创建 sqlite 后端
func NewSQLite(dbPath string) (Store, error) {
	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		return nil, fmt.Errorf("execute schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Load() (map[string]model.UploadRecord, error) {
	rows, err := s.db.Query("SELECT note_id, youtube_id, youtube_url, title, uploaded_at FROM upload_records")
	if err != nil {
		return nil, fmt.Errorf("query upload records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]model.UploadRecord)
	for rows.Next() {
		var rec model.UploadRecord
		if err := rows.Scan(&rec.NoteID, &rec.YouTubeID, &rec.YouTubeURL, &rec.Title, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan upload record: %w", err)
		}
		records[rec.NoteID] = rec
	}
	return records, rows.Err()
}

func (s *sqliteStore) Save(records map[string]model.UploadRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM upload_records"); err != nil {
		return fmt.Errorf("clear upload records: %w", err)
	}
	for noteID, rec := range records {
		_, err := tx.Exec(
			"INSERT INTO upload_records (note_id, youtube_id, youtube_url, title, uploaded_at) VALUES (?, ?, ?, ?, ?)",
			noteID, rec.YouTubeID, rec.YouTubeURL, rec.Title, rec.UploadedAt)
		if err != nil {
			return fmt.Errorf("insert upload record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
