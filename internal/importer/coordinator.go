package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"renjoyops/internal/metrics"
	"renjoyops/internal/parser"
	"renjoyops/internal/store"
)

// Coordinator 导入协调器
// 遍历上传文件的所有 Sheet，识别类型后交给对应解析器，结果批量入库
type Coordinator struct {
	store      *store.Store
	recognizer *parser.SheetRecognizer
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store *store.Store) *Coordinator {
	return &Coordinator{
		store:      store,
		recognizer: parser.NewSheetRecognizer(),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath      string
	ClearExisting bool // 是否先清掉同来源文件的旧数据
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/warning/sheet_start/sheet_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// importContext 一次导入的上下文
type importContext struct {
	importID     string
	filePath     string
	sourceFile   string
	file         *excelize.File
	startTime    time.Time
	report       *parser.ImportReport
	progressChan chan ProgressEvent
	sourceKind   string // 首个成功导入 Sheet 的类型，记入导入日志
	cleared      bool
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	importID := uuid.New().String()
	sourceFile := filepath.Base(opts.FilePath)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始导入 Excel 文件",
		Data: map[string]string{
			"import_id": importID,
			"filename":  sourceFile,
		},
		Timestamp: time.Now(),
	})

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("unknown", "error").Inc()
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("打开文件失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}
	defer file.Close()

	var fileSize int64
	if info, err := os.Stat(opts.FilePath); err == nil {
		fileSize = info.Size()
	}

	ctx := &importContext{
		importID:     importID,
		filePath:     opts.FilePath,
		sourceFile:   sourceFile,
		file:         file,
		startTime:    startTime,
		progressChan: progressChan,
		report: &parser.ImportReport{
			Filename: sourceFile,
			Sheets:   []parser.ParseResult{},
		},
	}

	sheetList := file.GetSheetList()
	ctx.report.TotalSheets = len(sheetList)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data: map[string]interface{}{
			"total_sheets": len(sheetList),
		},
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetList {
		c.processSheet(ctx, sheetName, opts)
	}

	ctx.report.Duration = time.Since(startTime)

	status := "success"
	if ctx.report.ImportedSheets == 0 {
		status = "empty"
	}

	if ctx.sourceKind == "" {
		ctx.sourceKind = "unknown"
	}
	metrics.ImportsTotal.WithLabelValues(ctx.sourceKind, status).Inc()

	// 写导入日志；日志失败不影响导入本身
	logID, err := c.store.CreateImportLog(importID, sourceFile, opts.FilePath, fileSize, ctx.sourceKind)
	if err == nil {
		_ = c.store.UpdateImportLog(logID,
			ctx.report.TotalSheets, ctx.report.ImportedSheets, ctx.report.SkippedSheets,
			ctx.report.TotalRows, ctx.report.ImportedRows, ctx.report.ErrorRows,
			status, "")
	} else {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("写入导入日志失败: %v", err),
			Timestamp: time.Now(),
		})
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ctx *importContext, sheetName string, opts ImportOptions) {
	sheetStartTime := time.Now()

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_start",
		Message: fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data: map[string]string{
			"sheet_name": sheetName,
		},
		Timestamp: time.Now(),
	})

	rows, err := ctx.file.GetRows(sheetName)
	if err != nil || len(rows) < 1 {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeUnknown,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("读取 Sheet 失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	recognition := c.recognizer.Recognize(sheetName, rows[0])

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("Sheet \"%s\" 识别为: %s (置信度: %.2f)", sheetName, recognition.SheetType, recognition.Confidence),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"sheet_type": recognition.SheetType,
			"confidence": recognition.Confidence,
		},
		Timestamp: time.Now(),
	})

	switch recognition.SheetType {
	case parser.SheetTypeTimesheet:
		c.processTimesheet(ctx, sheetName, opts)
	case parser.SheetTypeTasks:
		c.processTasks(ctx, sheetName, opts)
	case parser.SheetTypeAssignments:
		c.processAssignments(ctx, sheetName, opts)
	default:
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeUnknown,
			Status:    "skipped",
			Errors:    []string{"无法识别 Sheet 类型"},
			Duration:  time.Since(sheetStartTime),
		})
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("无法识别 Sheet: %s (置信度过低)", sheetName),
			Timestamp: time.Now(),
		})
	}
}

// processTimesheet 处理时钟系统班次表
func (c *Coordinator) processTimesheet(ctx *importContext, sheetName string, opts ImportOptions) {
	sheetStartTime := time.Now()

	p := parser.NewTimesheetParser(ctx.file)
	entries, result, err := p.ParseSheet(sheetName)
	if err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeTimesheet,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	for _, e := range entries {
		e.SourceFile = ctx.sourceFile
	}

	c.clearExistingOnce(ctx, opts)

	if err := c.store.BatchInsertClockEntries(entries); err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeTimesheet,
			Status:    "error",
			ErrorRows: len(entries),
			Errors:    []string{fmt.Sprintf("批量插入失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	if ctx.sourceKind == "" {
		ctx.sourceKind = "timesheet"
	}
	metrics.ImportedRowsTotal.WithLabelValues(string(parser.SheetTypeTimesheet)).Add(float64(result.ImportedRows))
	metrics.SkippedRowsTotal.WithLabelValues(string(parser.SheetTypeTimesheet)).Add(float64(result.ErrorRows))

	result.Status = "imported"
	result.Duration = time.Since(sheetStartTime)
	c.recordSheetResult(ctx, *result)

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行", sheetName, result.ImportedRows),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"imported_rows": result.ImportedRows,
			"error_rows":    result.ErrorRows,
		},
		Timestamp: time.Now(),
	})
}

// processTasks 处理任务系统工单表
func (c *Coordinator) processTasks(ctx *importContext, sheetName string, opts ImportOptions) {
	sheetStartTime := time.Now()

	p := parser.NewTaskParser(ctx.file)
	tasks, assignments, result, err := p.ParseTaskSheet(sheetName)
	if err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeTasks,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	for _, t := range tasks {
		t.SourceFile = ctx.sourceFile
	}
	for _, a := range assignments {
		a.SourceFile = ctx.sourceFile
	}

	c.clearExistingOnce(ctx, opts)

	if err := c.store.BatchInsertTasks(tasks); err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeTasks,
			Status:    "error",
			ErrorRows: len(tasks),
			Errors:    []string{fmt.Sprintf("批量插入失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}
	if err := c.store.BatchInsertAssignments(assignments); err != nil {
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("内联执行人入库失败: %v", err),
			Timestamp: time.Now(),
		})
	}

	if ctx.sourceKind == "" {
		ctx.sourceKind = "tasks"
	}
	metrics.ImportedRowsTotal.WithLabelValues(string(parser.SheetTypeTasks)).Add(float64(result.ImportedRows))
	metrics.SkippedRowsTotal.WithLabelValues(string(parser.SheetTypeTasks)).Add(float64(result.ErrorRows))

	result.Status = "imported"
	result.Duration = time.Since(sheetStartTime)
	c.recordSheetResult(ctx, *result)

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行工单, %d 条关联", sheetName, result.ImportedRows, len(assignments)),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"imported_rows": result.ImportedRows,
			"assignments":   len(assignments),
		},
		Timestamp: time.Now(),
	})
}

// processAssignments 处理任务-执行人关联表
func (c *Coordinator) processAssignments(ctx *importContext, sheetName string, opts ImportOptions) {
	sheetStartTime := time.Now()

	p := parser.NewTaskParser(ctx.file)
	assignments, result, err := p.ParseAssignmentSheet(sheetName)
	if err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeAssignments,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	for _, a := range assignments {
		a.SourceFile = ctx.sourceFile
	}

	c.clearExistingOnce(ctx, opts)

	if err := c.store.BatchInsertAssignments(assignments); err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeAssignments,
			Status:    "error",
			ErrorRows: len(assignments),
			Errors:    []string{fmt.Sprintf("批量插入失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	if ctx.sourceKind == "" {
		ctx.sourceKind = "tasks"
	}
	metrics.ImportedRowsTotal.WithLabelValues(string(parser.SheetTypeAssignments)).Add(float64(result.ImportedRows))
	metrics.SkippedRowsTotal.WithLabelValues(string(parser.SheetTypeAssignments)).Add(float64(result.ErrorRows))

	result.Status = "imported"
	result.Duration = time.Since(sheetStartTime)
	c.recordSheetResult(ctx, *result)

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 条关联", sheetName, result.ImportedRows),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"imported_rows": result.ImportedRows,
		},
		Timestamp: time.Now(),
	})
}

// clearExistingOnce 首个可导入 Sheet 落库前清掉同名来源文件的旧数据
func (c *Coordinator) clearExistingOnce(ctx *importContext, opts ImportOptions) {
	if !opts.ClearExisting || ctx.cleared {
		return
	}
	ctx.cleared = true

	if err := c.store.DeleteClockEntriesBySource(ctx.sourceFile); err != nil {
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("清空旧班次数据失败: %v", err),
			Timestamp: time.Now(),
		})
	}
	if err := c.store.DeleteTasksBySource(ctx.sourceFile); err != nil {
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("清空旧工单数据失败: %v", err),
			Timestamp: time.Now(),
		})
	}
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ctx *importContext, result parser.ParseResult) {
	ctx.report.Sheets = append(ctx.report.Sheets, result)

	if result.Status == "imported" {
		ctx.report.ImportedSheets++
		ctx.report.ImportedRows += result.ImportedRows
	} else if result.Status == "skipped" {
		ctx.report.SkippedSheets++
	}

	if result.ErrorRows > 0 {
		ctx.report.ErrorRows += result.ErrorRows
	}

	ctx.report.TotalRows += result.ImportedRows + result.ErrorRows
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
