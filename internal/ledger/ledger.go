package ledger

import (
	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"go.uber.org/zap"
)

// Store 上传记录的持久化后端
type Store interface {
	// Load 读取全部记录；文件不存在时返回空映射而非错误
	Load() (map[string]model.UploadRecord, error)
	// Save 整体重写全部记录
	Save(records map[string]model.UploadRecord) error
	Close() error
}

// WriteError 持久化写入失败。上传本身已成功时调用方仍须按搬运失败处理，
// 否则未落盘的记录会让下次批量重复上传而无人知晓。
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write upload ledger: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Ledger 已上传记录，note_id → 记录。单进程单写者，不加锁；
// 两个批量任务共用同一存储属于误用，后写者覆盖前者。
type Ledger struct {
	store   Store
	records map[string]model.UploadRecord
	logger  *zap.Logger
}

// Load 从存储加载账本。存储损坏不致命：记一条警告并从空账本开始，
// 首次运行时文件本来就不存在。
func Load(store Store, logger *zap.Logger) *Ledger {
	records, err := store.Load()
	if err != nil {
		logger.Warn("load upload ledger failed, starting empty", zap.Error(err))
		records = nil
	}
	if records == nil {
		records = make(map[string]model.UploadRecord)
	}
	return &Ledger{
		store:   store,
		records: records,
		logger:  logger,
	}
}

// Contains 判断笔记是否已搬运过
func (l *Ledger) Contains(noteID string) bool {
	_, ok := l.records[noteID]
	return ok
}

// Get 查询某条笔记的上传记录
func (l *Ledger) Get(noteID string) (model.UploadRecord, bool) {
	rec, ok := l.records[noteID]
	return rec, ok
}

// Len 已记录的条数
func (l *Ledger) Len() int {
	return len(l.records)
}

// Append 写入一条上传记录并同步落盘。同一 note_id 重复写入时
// 新记录覆盖旧记录，持久化后每个 note_id 仍只有一条。
func (l *Ledger) Append(record model.UploadRecord) error {
	prev, existed := l.records[record.NoteID]
	l.records[record.NoteID] = record

	if err := l.store.Save(l.records); err != nil {
		// 落盘失败时回滚内存，保持与磁盘一致
		if existed {
			l.records[record.NoteID] = prev
		} else {
			delete(l.records, record.NoteID)
		}
		return &WriteError{Err: err}
	}
	return nil
}

// Close 关闭底层存储
func (l *Ledger) Close() error {
	return l.store.Close()
}
