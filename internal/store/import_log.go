package store

import (
	"fmt"
	"time"
)

// ImportLog 导入日志记录
type ImportLog struct {
	ID             int64      `json:"id"`
	ImportID       string     `json:"importId"`
	Filename       string     `json:"filename"`
	FilePath       string     `json:"filePath"`
	FileSize       int64      `json:"fileSize"`
	SourceKind     string     `json:"sourceKind"` // timesheet / tasks
	TotalSheets    int        `json:"totalSheets"`
	ImportedSheets int        `json:"importedSheets"`
	SkippedSheets  int        `json:"skippedSheets"`
	TotalRows      int        `json:"totalRows"`
	ImportedRows   int        `json:"importedRows"`
	ErrorRows      int        `json:"errorRows"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"errorMessage"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(importID, filename, filePath string, fileSize int64, sourceKind string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (import_id, filename, file_path, file_size, source_kind, status)
		VALUES (?, ?, ?, ?, ?, 'processing')
	`, importID, filename, filePath, fileSize, sourceKind)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			total_rows = ?,
			imported_rows = ?,
			error_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// GetRecentImportLogs 获取最近的导入日志
func (s *Store) GetRecentImportLogs(limit int) ([]*ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, import_id, filename, file_path, file_size, source_kind,
		       total_sheets, imported_sheets, skipped_sheets,
		       total_rows, imported_rows, error_rows,
		       status, error_message, created_at, completed_at
		FROM import_logs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var logs []*ImportLog
	for rows.Next() {
		l := &ImportLog{}
		err := rows.Scan(
			&l.ID, &l.ImportID, &l.Filename, &l.FilePath, &l.FileSize, &l.SourceKind,
			&l.TotalSheets, &l.ImportedSheets, &l.SkippedSheets,
			&l.TotalRows, &l.ImportedRows, &l.ErrorRows,
			&l.Status, &l.ErrorMessage, &l.CreatedAt, &l.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
