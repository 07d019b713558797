package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"renjoyops/internal/model"
)

// TimesheetParser 时钟系统班次表解析器
type TimesheetParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
	mapper     *FieldMapper
}

// NewTimesheetParser 创建班次表解析器
func NewTimesheetParser(file *excelize.File) *TimesheetParser {
	return &TimesheetParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
		mapper:     NewFieldMapper(),
	}
}

// ParseSheet 解析班次 Sheet
// 坏行跳过并计入 result.ErrorRows，单行错误不中断整个 Sheet
func (p *TimesheetParser) ParseSheet(sheetName string) ([]*model.ClockEntry, *ParseResult, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet has no data rows")
	}

	headers := rows[0]

	recognition := p.recognizer.Recognize(sheetName, headers)
	if recognition.SheetType != SheetTypeTimesheet {
		return nil, nil, fmt.Errorf("not a timesheet sheet")
	}

	mappings := p.mapper.MapTimesheet(headers)
	if !hasField(mappings, FieldEmployeeName) || !hasField(mappings, FieldClockIn) {
		return nil, nil, fmt.Errorf("timesheet sheet missing employee/clock-in columns")
	}

	result := &ParseResult{
		SheetName: sheetName,
		SheetType: SheetTypeTimesheet,
	}

	var entries []*model.ClockEntry
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		entry, err := p.parseRow(rows[rowIdx], mappings, sheetName, rowIdx+1)
		if err != nil {
			result.ErrorRows++
			if len(result.Errors) < 20 {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowIdx+1, err))
			}
			continue
		}
		if entry == nil {
			continue // 空行
		}
		entries = append(entries, entry)
		result.ImportedRows++
	}

	return entries, result, nil
}

// parseRow 解析单行班次数据
func (p *TimesheetParser) parseRow(row []string, mappings map[int]FieldMapping, sheetName string, rowNo int) (*model.ClockEntry, error) {
	entry := &model.ClockEntry{
		RowNo:       rowNo,
		SourceSheet: sheetName,
	}

	var clockOutRaw, durationRaw string
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
		case FieldEmployeeName:
			entry.EmployeeName = value
		case FieldClockIn:
			t, err := ParseTimestamp(value)
			if err != nil {
				return nil, fmt.Errorf("clock-in: %w", err)
			}
			entry.ClockIn = t
		case FieldClockOut:
			clockOutRaw = value
		case FieldDurationHrs:
			durationRaw = value
		case FieldJobLabel:
			entry.JobLabel = value
		}
	}

	if empty {
		return nil, nil
	}
	if entry.EmployeeName == "" {
		return nil, fmt.Errorf("missing employee name")
	}
	if entry.ClockIn.IsZero() {
		return nil, fmt.Errorf("missing clock-in timestamp")
	}

	// 时长优先取时长列；没有时长列时由下钟时间推导
	switch {
	case durationRaw != "":
		hours, err := ParseHours(durationRaw)
		if err != nil {
			return nil, fmt.Errorf("duration: %w", err)
		}
		entry.DurationHours = hours
	case clockOutRaw != "":
		out, err := ParseTimestamp(clockOutRaw)
		if err != nil {
			return nil, fmt.Errorf("clock-out: %w", err)
		}
		// 跨午夜班次：下钟早于上钟按 +24h 处理
		if out.Before(entry.ClockIn) {
			out = out.Add(24 * time.Hour)
		}
		entry.DurationHours = out.Sub(entry.ClockIn).Hours()
	default:
		return nil, fmt.Errorf("missing duration and clock-out")
	}

	if entry.DurationHours < 0 {
		return nil, fmt.Errorf("negative duration")
	}

	return entry, nil
}

func hasField(mappings map[int]FieldMapping, field string) bool {
	for _, m := range mappings {
		if m.Field == field {
			return true
		}
	}
	return false
}
