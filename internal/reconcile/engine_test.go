package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"renjoyops/internal/config"
	"renjoyops/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultConfig().Reconcile)
}

func testOptions() Options {
	return Options{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local),
	}
}

func clockRow(name string, clockIn time.Time, hours float64, job string) *model.ClockEntry {
	return &model.ClockEntry{
		EmployeeName:  name,
		ClockIn:       clockIn,
		DurationHours: hours,
		JobLabel:      job,
	}
}

func taskRow(key, dept string, completed time.Time, minutes float64) *model.TaskRecord {
	return &model.TaskRecord{
		TaskKey:         key,
		Department:      dept,
		CompletedAt:     completed,
		DurationMinutes: minutes,
	}
}

func assignRow(key, name string) *model.TaskAssignment {
	return &model.TaskAssignment{TaskKey: key, AssigneeName: name}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.Local)
}

// TestRunMariaScenario 规格场景：token-subset 匹配 + 当日标记与异常清单的区分
// 打卡 8.0h + 任务 45min：flagged=true，但不产生任何 Exception
func TestRunMariaScenario(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("Maria Gonzalez", day(2024, 1, 5), 8.0, "housekeeping"),
		},
		Tasks: []*model.TaskRecord{
			taskRow("t1", "housekeeping", day(2024, 1, 5), 45),
		},
		Assignments: []*model.TaskAssignment{
			assignRow("t1", "Maria G"),
		},
	}

	result := e.Run(snapshot, testOptions())

	assert.False(t, result.NoData)
	// "Maria G" 通过词集覆盖匹配到 "Maria Gonzalez"，两侧合并成一个人
	assert.Len(t, result.Daily, 1)
	d := result.Daily[0]
	assert.Equal(t, "Maria G", d.Person.DisplayName)
	assert.Equal(t, "Maria Gonzalez", d.Person.ClockName)
	assert.Equal(t, "2024-01-05", d.Date)
	assert.InDelta(t, 8.0, d.ClockedHours, 1e-9)
	assert.InDelta(t, 0.75, d.TaskHours, 1e-9)
	assert.InDelta(t, 7.25, d.UnaccountedHours, 1e-9)
	assert.Equal(t, 9, d.CoveragePercent)
	assert.True(t, d.Flagged)

	// 日级标记不等于异常：打卡 8h、有任务，不触发任何异常类型
	assert.Empty(t, result.Exceptions)
	assert.Equal(t, 1, result.Quality.NameMatch.Subset)
}

// TestRunLongDayAndNoTasks 规格场景：同一（人员，日期）可同时产出两类异常
func TestRunLongDayAndNoTasks(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("John Doe", day(2024, 2, 1), 11.0, "maintenance"),
		},
	}

	result := e.Run(snapshot, testOptions())

	assert.Len(t, result.Exceptions, 2)
	// error 排在 warning 之前
	assert.Equal(t, ExceptionLongDay, result.Exceptions[0].Kind)
	assert.Equal(t, SeverityError, result.Exceptions[0].Severity)
	assert.Equal(t, ExceptionNoTasks, result.Exceptions[1].Kind)
	assert.Equal(t, SeverityWarning, result.Exceptions[1].Severity)
	for _, ex := range result.Exceptions {
		assert.Equal(t, "John Doe", ex.Person)
		assert.Equal(t, "2024-02-01", ex.Date)
	}
}

// TestRunThresholdExact 阈值取等边界：恰好 10.0h 触发，9.99h 不触发
func TestRunThresholdExact(t *testing.T) {
	e := newTestEngine()

	result := e.Run(&Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("A", day(2024, 1, 8), 10.0, "")},
	}, testOptions())
	kinds := exceptionKinds(result)
	assert.Contains(t, kinds, ExceptionLongDay)

	result = e.Run(&Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("A", day(2024, 1, 8), 9.99, "")},
	}, testOptions())
	kinds = exceptionKinds(result)
	assert.NotContains(t, kinds, ExceptionLongDay)
}

// TestRunTaskOnlyDay 仅任务无打卡：coverage=100%、unaccounted=0，是有效记录不是错误
func TestRunTaskOnlyDay(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		Tasks:       []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 10), 90)},
		Assignments: []*model.TaskAssignment{assignRow("t1", "Ana Lopez")},
	}

	result := e.Run(snapshot, testOptions())

	assert.False(t, result.NoData)
	assert.True(t, result.Quality.ClockSourceEmpty)
	assert.Len(t, result.Daily, 1)
	d := result.Daily[0]
	assert.Equal(t, 0.0, d.ClockedHours)
	assert.Equal(t, 100, d.CoveragePercent)
	assert.Equal(t, 0.0, d.UnaccountedHours)
	assert.False(t, d.Person.HasClock())
}

// TestRunUnaccountedNonNegative 任务工时超过打卡时 unaccounted 不为负，覆盖率可超 100%
func TestRunUnaccountedNonNegative(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("Ana Lopez", day(2024, 1, 10), 2.0, "")},
		Tasks:        []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 10), 180)},
		Assignments:  []*model.TaskAssignment{assignRow("t1", "Ana Lopez")},
	}

	result := e.Run(snapshot, testOptions())

	d := result.Daily[0]
	assert.Equal(t, 0.0, d.UnaccountedHours)
	// 3h 任务 / 2h 打卡 = 150%，不截断，作为数据质量信号暴露
	assert.Equal(t, 150, d.CoveragePercent)
}

// TestRunPersonRatioOfSums 人员比率是总和比，不是每日比率平均
func TestRunPersonRatioOfSums(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("Ana Lopez", day(2024, 1, 8), 8.0, ""),
			clockRow("Ana Lopez", day(2024, 1, 9), 2.0, ""),
		},
		Tasks: []*model.TaskRecord{
			taskRow("t1", "housekeeping", day(2024, 1, 8), 120),
			taskRow("t2", "housekeeping", day(2024, 1, 9), 120),
		},
		Assignments: []*model.TaskAssignment{
			assignRow("t1", "Ana Lopez"),
			assignRow("t2", "Ana Lopez"),
		},
	}

	result := e.Run(snapshot, testOptions())

	assert.Len(t, result.Persons, 1)
	s := result.Persons[0]
	// sum(task)=4h, sum(clocked)=10h → 40%；每日比率平均会得到 (25+100)/2=62.5
	assert.Equal(t, 40, s.ProductivityPercent)
	assert.InDelta(t, 6.0, s.UnaccountedHours, 1e-9)
}

// TestRunSharedTaskDoubleCounted 多人任务工时对每个执行人全额计入（既定口径）
func TestRunSharedTaskDoubleCounted(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		Tasks: []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 10), 60)},
		Assignments: []*model.TaskAssignment{
			assignRow("t1", "Ana Lopez"),
			assignRow("t1", "Maria Gonzalez"),
		},
	}

	result := e.Run(snapshot, testOptions())

	assert.Len(t, result.Daily, 2)
	for _, d := range result.Daily {
		assert.InDelta(t, 1.0, d.TaskHours, 1e-9)
	}
	assert.Equal(t, 1, result.Quality.SharedTasks)
}

// TestRunNoData 两侧都没有可用行时返回明确的"无数据"，而不是空集
func TestRunNoData(t *testing.T) {
	e := newTestEngine()

	result := e.Run(&Snapshot{}, testOptions())

	assert.True(t, result.NoData)
	assert.Empty(t, result.Daily)
	assert.NotEmpty(t, result.RunID)
}

// TestRunSkipsMalformedRows 坏行跳过并计数，不影响其余行
func TestRunSkipsMalformedRows(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("Ana Lopez", day(2024, 1, 8), 8.0, ""),
			clockRow("", day(2024, 1, 8), 8.0, ""),               // 无姓名
			clockRow("Bad Row", time.Time{}, 8.0, ""),            // 无时间戳
			clockRow("Neg Row", day(2024, 1, 8), -1.0, ""),       // 负时长
		},
		Tasks: []*model.TaskRecord{
			taskRow("t1", "housekeeping", day(2024, 1, 8), 60),
			taskRow("t2", "housekeeping", time.Time{}, 60), // 无完成时间
		},
		Assignments: []*model.TaskAssignment{
			assignRow("t1", "Ana Lopez"),
			assignRow("t2", "Ana Lopez"),
		},
	}

	result := e.Run(snapshot, testOptions())

	assert.Equal(t, 3, result.Quality.SkippedClockRows)
	assert.Equal(t, 1, result.Quality.SkippedTaskRows)
	assert.Len(t, result.Daily, 1)
}

// TestRunUnassignedTaskCounted 无执行人的任务不归因，但会计数
func TestRunUnassignedTaskCounted(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("Ana Lopez", day(2024, 1, 8), 4.0, "")},
		Tasks:        []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 8), 60)},
	}

	result := e.Run(snapshot, testOptions())

	assert.Equal(t, 1, result.Quality.UnassignedTasks)
	assert.Len(t, result.Daily, 1)
	assert.Equal(t, 0.0, result.Daily[0].TaskHours)
}

// TestRunIdempotent 同样输入两次运行产出一致（RunID/时间戳除外）
func TestRunIdempotent(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("Maria Gonzalez", day(2024, 1, 5), 8.0, "housekeeping"),
			clockRow("John Doe", day(2024, 2, 1), 11.0, "maintenance"),
		},
		Tasks:       []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 5), 45)},
		Assignments: []*model.TaskAssignment{assignRow("t1", "Maria G")},
	}

	first := e.Run(snapshot, testOptions())
	second := e.Run(snapshot, testOptions())

	assert.Equal(t, first.Daily, second.Daily)
	assert.Equal(t, first.Persons, second.Persons)
	assert.Equal(t, first.Exceptions, second.Exceptions)
	assert.Equal(t, first.Quality, second.Quality)
}

// TestRunHourlyRate 未覆盖工时成本 = 未覆盖小时 × 单价
func TestRunHourlyRate(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("Ana Lopez", day(2024, 1, 8), 5.0, "")},
	}

	opts := testOptions()
	opts.HourlyRate = 20.0
	result := e.Run(snapshot, opts)

	assert.InDelta(t, 100.0, result.Daily[0].EstimatedCost, 1e-9)
}

// TestRunFilters 部门过滤与最小打卡时长过滤在汇总前生效
func TestRunFilters(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{
			clockRow("Ana Lopez", day(2024, 1, 8), 8.0, "housekeeping"),
			clockRow("John Doe", day(2024, 1, 8), 8.0, "maintenance"),
			clockRow("Tiny Shift", day(2024, 1, 8), 0.5, "housekeeping"),
		},
	}

	opts := testOptions()
	opts.Department = "housekeeping"
	opts.MinClockedHours = 1.0
	result := e.Run(snapshot, opts)

	assert.Len(t, result.Daily, 1)
	assert.Equal(t, "Ana Lopez", result.Daily[0].Person.DisplayName)
	assert.Len(t, result.Departments, 1)
	assert.Equal(t, "housekeeping", result.Departments[0].Department)
}

// TestRunDepartmentPrecedence 两侧都有记录时部门以时钟侧标签为准
func TestRunDepartmentPrecedence(t *testing.T) {
	e := newTestEngine()
	snapshot := &Snapshot{
		ClockEntries: []*model.ClockEntry{clockRow("Maria Gonzalez", day(2024, 1, 5), 8.0, "front desk")},
		Tasks:        []*model.TaskRecord{taskRow("t1", "housekeeping", day(2024, 1, 5), 45)},
		Assignments:  []*model.TaskAssignment{assignRow("t1", "Maria G")},
	}

	result := e.Run(snapshot, testOptions())

	assert.Equal(t, "front desk", result.Daily[0].Person.Department)
}

func exceptionKinds(result *Result) []ExceptionKind {
	kinds := make([]ExceptionKind, 0, len(result.Exceptions))
	for _, ex := range result.Exceptions {
		kinds = append(kinds, ex.Kind)
	}
	return kinds
}
