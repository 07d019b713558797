package parser

import "time"

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypeTimesheet   SheetType = "timesheet"   // 时钟系统班次表
	SheetTypeTasks       SheetType = "tasks"       // 任务系统工单表
	SheetTypeAssignments SheetType = "assignments" // 任务-执行人关联表
	SheetTypeUnknown     SheetType = "unknown"
)

// 目标字段键
// 两套系统的导出文件列名因部署而异，识别后统一映射到这些键
const (
	FieldEmployeeName = "employee_name"
	FieldClockIn      = "clock_in"
	FieldClockOut     = "clock_out"
	FieldDurationHrs  = "duration_hours"
	FieldJobLabel     = "job_label"

	FieldTaskKey     = "task_key"
	FieldDepartment  = "department"
	FieldCompletedAt = "completed_at"
	FieldDurationMin = "duration_minutes"
	FieldAssignees   = "assignees"

	FieldAssigneeName = "assignee_name"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	SheetType  SheetType `json:"sheetType"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
}

// FieldMapping 字段映射结果
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // 列索引
	ColumnName  string `json:"columnName"`  // 原始列名
	Field       string `json:"field"`       // 目标字段键
}

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	SheetType    SheetType     `json:"sheetType"`
	Status       string        `json:"status"` // imported/skipped/error
	ImportedRows int           `json:"importedRows"`
	ErrorRows    int           `json:"errorRows"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 一次导入的汇总报告
type ImportReport struct {
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ImportedRows   int           `json:"importedRows"`
	ErrorRows      int           `json:"errorRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
