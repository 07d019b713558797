package store

import (
	"database/sql"
	"fmt"
	"strings"

	"renjoyops/internal/model"
)

// BatchInsertTasks 批量插入工单记录
func (s *Store) BatchInsertTasks(tasks []*model.TaskRecord) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO task_records (
			task_key, department, completed_at, local_date, duration_minutes, row_no,
			source_sheet, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.Exec(
			t.TaskKey, t.Department, t.CompletedAt, t.LocalDate(), t.DurationMinutes, t.RowNo,
			t.SourceSheet, t.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// BatchInsertAssignments 批量插入任务-执行人关联
func (s *Store) BatchInsertAssignments(assignments []*model.TaskAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO task_assignments (task_key, assignee_name, source_sheet, source_file)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		_, err := stmt.Exec(a.TaskKey, a.AssigneeName, a.SourceSheet, a.SourceFile)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TaskQueryOptions 工单查询选项
type TaskQueryOptions struct {
	Start      *string // YYYY-MM-DD，含
	End        *string // YYYY-MM-DD，含
	Department *string
	SourceFile *string
	Limit      int
	Offset     int
}

// GetTasks 查询工单记录
func (s *Store) GetTasks(opts TaskQueryOptions) ([]*model.TaskRecord, error) {
	query := `
		SELECT id, task_key, department, completed_at, local_date, duration_minutes, row_no,
		       source_sheet, source_file, created_at
		FROM task_records WHERE 1=1`
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
	if opts.Department != nil {
		query += " AND department = ?"
		args = append(args, *opts.Department)
	}
	if opts.SourceFile != nil {
		query += " AND source_file = ?"
		args = append(args, *opts.SourceFile)
	}

	query += " ORDER BY completed_at, id"

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
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetAssignmentsForTasks 查询指定工单集合的执行人关联
// taskKeys 为空时返回全部关联
func (s *Store) GetAssignmentsForTasks(taskKeys []string) ([]*model.TaskAssignment, error) {
	query := `
		SELECT id, task_key, assignee_name, source_sheet, source_file, created_at
		FROM task_assignments`
	args := []interface{}{}

	if len(taskKeys) > 0 {
		query += " WHERE task_key IN (?" + strings.Repeat(",?", len(taskKeys)-1) + ")"
		for _, key := range taskKeys {
			args = append(args, key)
		}
	}

	query += " ORDER BY task_key, assignee_name, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var results []*model.TaskAssignment
	for rows.Next() {
		a := &model.TaskAssignment{}
		err := rows.Scan(&a.ID, &a.TaskKey, &a.AssigneeName, &a.SourceSheet, &a.SourceFile, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

// CountTasks 统计工单数量
func (s *Store) CountTasks() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM task_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// DeleteTasksBySource 删除指定来源文件的工单与关联（重新导入前清理）
func (s *Store) DeleteTasksBySource(sourceFile string) error {
	if _, err := s.db.Exec("DELETE FROM task_records WHERE source_file = ?", sourceFile); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM task_assignments WHERE source_file = ?", sourceFile); err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}

// scanTasks 扫描多行工单记录
func scanTasks(rows *sql.Rows) ([]*model.TaskRecord, error) {
	var results []*model.TaskRecord

	for rows.Next() {
		t := &model.TaskRecord{}
		err := rows.Scan(
			&t.ID, &t.TaskKey, &t.Department, &t.CompletedAt, &t.LocalDay, &t.DurationMinutes, &t.RowNo,
			&t.SourceSheet, &t.SourceFile, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, t)
	}

	return results, rows.Err()
}
