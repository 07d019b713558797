package store

import (
	"path/filepath"
	"testing"
	"time"

	"renjoyops/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(v string) *string { return &v }

func TestClockEntriesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []*model.ClockEntry{
		{
			EmployeeName:  "Maria Gonzalez",
			ClockIn:       time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
			DurationHours: 8,
			JobLabel:      "housekeeping",
			RowNo:         2,
			SourceSheet:   "Timesheets",
			SourceFile:    "jan.xlsx",
		},
		{
			EmployeeName:  "John Doe",
			ClockIn:       time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
			DurationHours: 6,
			SourceFile:    "feb.xlsx",
		},
	}
	if err := s.BatchInsertClockEntries(in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	count, err := s.CountClockEntries()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// 按日期范围过滤只命中一月的记录
	got, err := s.GetClockEntries(ClockQueryOptions{
		Start: strPtr("2024-01-01"),
		End:   strPtr("2024-01-31"),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].EmployeeName != "Maria Gonzalez" || got[0].DurationHours != 8 {
		t.Errorf("unexpected entry: %+v", got[0])
	}
	if got[0].LocalDate() != "2024-01-05" {
		t.Errorf("local date = %s, want 2024-01-05", got[0].LocalDate())
	}

	// 按来源文件清理后重新统计
	if err := s.DeleteClockEntriesBySource("jan.xlsx"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	count, _ = s.CountClockEntries()
	if count != 1 {
		t.Fatalf("count after delete = %d, want 1", count)
	}
}

func TestTasksAndAssignments(t *testing.T) {
	s := newTestStore(t)

	tasks := []*model.TaskRecord{
		{
			TaskKey:         "t1",
			Department:      "housekeeping",
			CompletedAt:     time.Date(2024, 1, 5, 11, 0, 0, 0, time.UTC),
			DurationMinutes: 45,
			SourceFile:      "tasks.xlsx",
		},
		{
			TaskKey:         "t2",
			Department:      "maintenance",
			CompletedAt:     time.Date(2024, 1, 6, 14, 0, 0, 0, time.UTC),
			DurationMinutes: 90,
			SourceFile:      "tasks.xlsx",
		},
	}
	if err := s.BatchInsertTasks(tasks); err != nil {
		t.Fatalf("insert tasks: %v", err)
	}

	assignments := []*model.TaskAssignment{
		{TaskKey: "t1", AssigneeName: "Maria G", SourceFile: "tasks.xlsx"},
		{TaskKey: "t2", AssigneeName: "John D", SourceFile: "tasks.xlsx"},
		{TaskKey: "t2", AssigneeName: "Ana Lopez", SourceFile: "tasks.xlsx"},
	}
	if err := s.BatchInsertAssignments(assignments); err != nil {
		t.Fatalf("insert assignments: %v", err)
	}

	got, err := s.GetTasks(TaskQueryOptions{Department: strPtr("housekeeping")})
	if err != nil {
		t.Fatalf("query tasks: %v", err)
	}
	if len(got) != 1 || got[0].TaskKey != "t1" {
		t.Fatalf("unexpected tasks: %+v", got)
	}

	links, err := s.GetAssignmentsForTasks([]string{"t2"})
	if err != nil {
		t.Fatalf("query assignments: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d assignments, want 2", len(links))
	}

	all, err := s.GetAssignmentsForTasks(nil)
	if err != nil {
		t.Fatalf("query all assignments: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d assignments, want 3", len(all))
	}

	if err := s.DeleteTasksBySource("tasks.xlsx"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	count, _ := s.CountTasks()
	if count != 0 {
		t.Fatalf("count after delete = %d, want 0", count)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetConfig("hourly_rate"); err == nil {
		t.Fatal("expected error for missing key")
	}

	if err := s.SetConfigFloat("hourly_rate", 18.5); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := s.GetConfigFloat("hourly_rate")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != 18.5 {
		t.Fatalf("value = %v, want 18.5", v)
	}

	// 覆盖写
	if err := s.SetConfigFloat("hourly_rate", 20); err != nil {
		t.Fatalf("set again: %v", err)
	}
	v, _ = s.GetConfigFloat("hourly_rate")
	if v != 20 {
		t.Fatalf("value = %v, want 20", v)
	}

	all, err := s.GetAllConfig()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all["hourly_rate"] != "20" {
		t.Fatalf("all = %v", all)
	}
}

func TestImportLogLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateImportLog("imp-1", "jan.xlsx", "/data/uploads/jan.xlsx", 1234, "timesheet")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateImportLog(id, 3, 2, 1, 100, 95, 5, "success", ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	logs, err := s.GetRecentImportLogs(10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	l := logs[0]
	if l.Status != "success" || l.ImportedRows != 95 || l.ErrorRows != 5 {
		t.Errorf("unexpected log: %+v", l)
	}
	if l.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

// 东区时区凌晨的记录，UTC 日历日落在前一天。范围过滤必须按入库时
// 预计算的本地日走，边界日的行不能丢
func TestLocalDateRangeBoundary(t *testing.T) {
	s := newTestStore(t)
	cst := time.FixedZone("CST", 8*3600)

	entries := []*model.ClockEntry{
		{
			EmployeeName:  "Wang Wei",
			ClockIn:       time.Date(2024, 1, 1, 0, 30, 0, 0, cst),
			DurationHours: 8,
			SourceFile:    "jan.xlsx",
		},
	}
	if err := s.BatchInsertClockEntries(entries); err != nil {
		t.Fatalf("insert entries: %v", err)
	}

	tasks := []*model.TaskRecord{
		{
			TaskKey:         "t1",
			CompletedAt:     time.Date(2024, 1, 1, 0, 15, 0, 0, cst),
			DurationMinutes: 45,
			SourceFile:      "jan.xlsx",
		},
	}
	if err := s.BatchInsertTasks(tasks); err != nil {
		t.Fatalf("insert tasks: %v", err)
	}

	got, err := s.GetClockEntries(ClockQueryOptions{
		Start: strPtr("2024-01-01"),
		End:   strPtr("2024-01-31"),
	})
	if err != nil {
		t.Fatalf("query entries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].LocalDate() != "2024-01-01" {
		t.Errorf("entry local date = %s, want 2024-01-01", got[0].LocalDate())
	}

	gotTasks, err := s.GetTasks(TaskQueryOptions{
		Start: strPtr("2024-01-01"),
		End:   strPtr("2024-01-31"),
	})
	if err != nil {
		t.Fatalf("query tasks: %v", err)
	}
	if len(gotTasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(gotTasks))
	}
	if gotTasks[0].LocalDate() != "2024-01-01" {
		t.Errorf("task local date = %s, want 2024-01-01", gotTasks[0].LocalDate())
	}
}
