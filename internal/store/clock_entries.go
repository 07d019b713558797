package store

import (
	"database/sql"
	"fmt"

	"renjoyops/internal/model"
)

// BatchInsertClockEntries 批量插入班次记录
func (s *Store) BatchInsertClockEntries(entries []*model.ClockEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO clock_entries (
			employee_name, clock_in, local_date, duration_hours, job_label, row_no,
			source_sheet, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(
			e.EmployeeName, e.ClockIn, e.LocalDate(), e.DurationHours, e.JobLabel, e.RowNo,
			e.SourceSheet, e.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("failed to insert clock entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClockQueryOptions 班次记录查询选项
type ClockQueryOptions struct {
	Start        *string // YYYY-MM-DD，含
	End          *string // YYYY-MM-DD，含
	EmployeeName *string
	SourceFile   *string
	Limit        int
	Offset       int
}

// GetClockEntries 查询班次记录
func (s *Store) GetClockEntries(opts ClockQueryOptions) ([]*model.ClockEntry, error) {
	query := `
		SELECT id, employee_name, clock_in, local_date, duration_hours, job_label, row_no,
		       source_sheet, source_file, created_at
		FROM clock_entries WHERE 1=1`
	args := []interface{}{}

	// 范围过滤走预计算的本地日，与引擎的归桶口径一致
	if opts.Start != nil {
		query += " AND local_date >= ?"
		args = append(args, *opts.Start)
	}
	if opts.End != nil {
		query += " AND local_date <= ?"
		args = append(args, *opts.End)
	}
	if opts.EmployeeName != nil {
		query += " AND employee_name = ?"
		args = append(args, *opts.EmployeeName)
	}
	if opts.SourceFile != nil {
		query += " AND source_file = ?"
		args = append(args, *opts.SourceFile)
	}

	query += " ORDER BY clock_in, id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clock entries: %w", err)
	}
	defer rows.Close()

	return scanClockEntries(rows)
}

// CountClockEntries 统计班次记录数量
func (s *Store) CountClockEntries() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM clock_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clock entries: %w", err)
	}
	return count, nil
}

// DeleteClockEntriesBySource 删除指定来源文件的班次记录（重新导入前清理）
func (s *Store) DeleteClockEntriesBySource(sourceFile string) error {
	_, err := s.db.Exec("DELETE FROM clock_entries WHERE source_file = ?", sourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete clock entries: %w", err)
	}
	return nil
}

// scanClockEntries 扫描多行班次记录
func scanClockEntries(rows *sql.Rows) ([]*model.ClockEntry, error) {
	var results []*model.ClockEntry

	for rows.Next() {
		e := &model.ClockEntry{}
		err := rows.Scan(
			&e.ID, &e.EmployeeName, &e.ClockIn, &e.LocalDay, &e.DurationHours, &e.JobLabel, &e.RowNo,
			&e.SourceSheet, &e.SourceFile, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, e)
	}

	return results, rows.Err()
}
