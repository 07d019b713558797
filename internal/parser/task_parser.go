package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"renjoyops/internal/model"
)

// TaskParser 任务系统导出解析器
// 工单 Sheet 与关联 Sheet 分开解析；工单行上的内联执行人列也会展开成关联记录
type TaskParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
	mapper     *FieldMapper
}

// NewTaskParser 创建任务解析器
func NewTaskParser(file *excelize.File) *TaskParser {
	return &TaskParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
		mapper:     NewFieldMapper(),
	}
}

// ParseTaskSheet 解析工单 Sheet
// 返回工单记录与（由内联执行人列展开的）关联记录
func (p *TaskParser) ParseTaskSheet(sheetName string) ([]*model.TaskRecord, []*model.TaskAssignment, *ParseResult, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("sheet has no data rows")
	}

	headers := rows[0]

	recognition := p.recognizer.Recognize(sheetName, headers)
	if recognition.SheetType != SheetTypeTasks {
		return nil, nil, nil, fmt.Errorf("not a task sheet")
	}

	mappings := p.mapper.MapTasks(headers)
	if !hasField(mappings, FieldTaskKey) || !hasField(mappings, FieldCompletedAt) {
		return nil, nil, nil, fmt.Errorf("task sheet missing task-key/completed-at columns")
	}

	result := &ParseResult{
		SheetName: sheetName,
		SheetType: SheetTypeTasks,
	}

	var tasks []*model.TaskRecord
	var assignments []*model.TaskAssignment

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		task, rowAssignments, err := p.parseTaskRow(rows[rowIdx], mappings, sheetName, rowIdx+1)
		if err != nil {
			result.ErrorRows++
			if len(result.Errors) < 20 {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowIdx+1, err))
			}
			continue
		}
		if task == nil {
			continue // 空行
		}
		tasks = append(tasks, task)
		assignments = append(assignments, rowAssignments...)
		result.ImportedRows++
	}

	return tasks, assignments, result, nil
}

// parseTaskRow 解析单行工单数据
func (p *TaskParser) parseTaskRow(row []string, mappings map[int]FieldMapping, sheetName string, rowNo int) (*model.TaskRecord, []*model.TaskAssignment, error) {
	task := &model.TaskRecord{
		RowNo:       rowNo,
		SourceSheet: sheetName,
	}

	var assigneesRaw string
	empty := true

	for colIdx, mapping := range mappings {
		if colIdx >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[colIdx])
		if value == "" {
			continue
		}
		empty = false

		switch mapping.Field {
		case FieldTaskKey:
			task.TaskKey = value
		case FieldDepartment:
			task.Department = value
		case FieldCompletedAt:
			t, err := ParseTimestamp(value)
			if err != nil {
				return nil, nil, fmt.Errorf("completed-at: %w", err)
			}
			task.CompletedAt = t
		case FieldDurationMin:
			minutes, err := ParseMinutes(value)
			if err != nil {
				return nil, nil, fmt.Errorf("duration: %w", err)
			}
			task.DurationMinutes = minutes
		case FieldAssignees:
			assigneesRaw = value
		}
	}

	if empty {
		return nil, nil, nil
	}
	if task.TaskKey == "" {
		return nil, nil, fmt.Errorf("missing task key")
	}
	if task.CompletedAt.IsZero() {
		return nil, nil, fmt.Errorf("missing completion timestamp")
	}
	if task.DurationMinutes < 0 {
		return nil, nil, fmt.Errorf("negative duration")
	}

	var assignments []*model.TaskAssignment
	for _, name := range SplitAssignees(assigneesRaw) {
		assignments = append(assignments, &model.TaskAssignment{
			TaskKey:      task.TaskKey,
			AssigneeName: name,
			SourceSheet:  sheetName,
		})
	}

	return task, assignments, nil
}

// ParseAssignmentSheet 解析关联 Sheet
func (p *TaskParser) ParseAssignmentSheet(sheetName string) ([]*model.TaskAssignment, *ParseResult, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet has no data rows")
	}

	headers := rows[0]

	recognition := p.recognizer.Recognize(sheetName, headers)
	if recognition.SheetType != SheetTypeAssignments {
		return nil, nil, fmt.Errorf("not an assignment sheet")
	}

	mappings := p.mapper.MapAssignments(headers)

	result := &ParseResult{
		SheetName: sheetName,
		SheetType: SheetTypeAssignments,
	}

	var assignments []*model.TaskAssignment
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		a := &model.TaskAssignment{SourceSheet: sheetName}

		for colIdx, mapping := range mappings {
			if colIdx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[colIdx])
			if value == "" {
				continue
			}
			switch mapping.Field {
			case FieldTaskKey:
				a.TaskKey = value
			case FieldAssigneeName:
				a.AssigneeName = value
			}
		}

		if a.TaskKey == "" && a.AssigneeName == "" {
			continue // 空行
		}
		if a.TaskKey == "" || a.AssigneeName == "" {
			result.ErrorRows++
			if len(result.Errors) < 20 {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing task key or assignee", rowIdx+1))
			}
			continue
		}

		assignments = append(assignments, a)
		result.ImportedRows++
	}

	return assignments, result, nil
}
