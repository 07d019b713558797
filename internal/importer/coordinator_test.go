package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"renjoyops/internal/parser"
	"renjoyops/internal/store"
)

// writeFixture 生成含班次、工单、关联与一个无法识别 Sheet 的上传文件
func writeFixture(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Timesheets")
	timesheetRows := [][]interface{}{
		{"Employee Name", "Clock In", "Hours", "Job"},
		{"Maria Gonzalez", "2024-01-05 08:00", "8", "housekeeping"},
		{"John Doe", "2024-01-05 09:00", "6", "maintenance"},
		{"Bad Row", "not a date", "8", ""},
	}
	for i, row := range timesheetRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Timesheets", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	_, _ = f.NewSheet("Completed Tasks")
	taskRows := [][]interface{}{
		{"Task ID", "Department", "Completed At", "Duration (min)", "Assignees"},
		{"t1", "housekeeping", "2024-01-05 11:00", "45", "Maria G"},
	}
	for i, row := range taskRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Completed Tasks", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	_, _ = f.NewSheet("Assignments")
	assignmentRows := [][]interface{}{
		{"Task ID", "Assignee"},
		{"t1", "Maria G"},
	}
	for i, row := range assignmentRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Assignments", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	_, _ = f.NewSheet("Readme")
	readmeRows := [][]interface{}{
		{"Memo", "Author"},
		{"misc", "ops"},
	}
	for i, row := range readmeRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Readme", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
}

func runImport(t *testing.T, c *Coordinator, opts ImportOptions) *parser.ImportReport {
	t.Helper()
	var report *parser.ImportReport
	for evt := range c.Import(opts) {
		if evt.Type == "error" {
			t.Fatalf("import error event: %s", evt.Message)
		}
		if evt.Type == "done" {
			report = evt.Data.(*parser.ImportReport)
		}
	}
	if report == nil {
		t.Fatal("missing done report")
	}
	return report
}

func TestImportMixedWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "upload.xlsx")
	writeFixture(t, input)

	st, err := store.New(filepath.Join(dir, "snapshot.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st)
	report := runImport(t, coordinator, ImportOptions{FilePath: input, ClearExisting: true})

	if report.TotalSheets != 4 {
		t.Fatalf("total sheets = %d, want 4", report.TotalSheets)
	}
	if report.ImportedSheets != 3 {
		t.Fatalf("imported sheets = %d, want 3", report.ImportedSheets)
	}
	if report.SkippedSheets != 1 {
		t.Fatalf("skipped sheets = %d, want 1", report.SkippedSheets)
	}
	if report.ErrorRows != 1 {
		t.Fatalf("error rows = %d, want 1", report.ErrorRows)
	}

	clockCount, _ := st.CountClockEntries()
	if clockCount != 2 {
		t.Fatalf("clock entries = %d, want 2", clockCount)
	}
	taskCount, _ := st.CountTasks()
	if taskCount != 1 {
		t.Fatalf("tasks = %d, want 1", taskCount)
	}
	// 工单行内联执行人 + 关联 Sheet 各一条
	links, err := st.GetAssignmentsForTasks(nil)
	if err != nil {
		t.Fatalf("query assignments: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("assignments = %d, want 2", len(links))
	}

	logs, err := st.GetRecentImportLogs(5)
	if err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != "success" {
		t.Fatalf("unexpected import logs: %+v", logs)
	}
}

func TestImportClearExistingReplacesSource(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "upload.xlsx")
	writeFixture(t, input)

	st, err := store.New(filepath.Join(dir, "snapshot.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st)
	runImport(t, coordinator, ImportOptions{FilePath: input, ClearExisting: true})
	// 同一文件重复导入，ClearExisting 下不应翻倍
	runImport(t, coordinator, ImportOptions{FilePath: input, ClearExisting: true})

	clockCount, _ := st.CountClockEntries()
	if clockCount != 2 {
		t.Fatalf("clock entries after reimport = %d, want 2", clockCount)
	}
	taskCount, _ := st.CountTasks()
	if taskCount != 1 {
		t.Fatalf("tasks after reimport = %d, want 1", taskCount)
	}
}

func TestImportMissingFile(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st)
	sawError := false
	for evt := range coordinator.Import(ImportOptions{FilePath: "/nonexistent/file.xlsx"}) {
		if evt.Type == "error" {
			sawError = true
		}
		if evt.Type == "done" {
			t.Fatal("unexpected done event for missing file")
		}
	}
	if !sawError {
		t.Fatal("expected error event")
	}
}
