package reconcile

import (
	"time"

	"renjoyops/internal/model"
	"renjoyops/internal/namematch"
)

// Options 一次对账运行的参数
type Options struct {
	Start           time.Time // 起始日（含）
	End             time.Time // 结束日（含）
	Department      string    // 可选：部门过滤，汇总前生效
	MinClockedHours float64   // 可选：剔除区间内打卡总时长低于此值的人员（降噪）
	HourlyRate      float64   // 可选：未覆盖工时估算单价，0 表示用配置默认值
}

// Snapshot 两套系统拉取到的快照行
// 引擎本身不做任何 IO，取数由上层协作方完成
type Snapshot struct {
	ClockEntries []*model.ClockEntry
	Tasks        []*model.TaskRecord
	Assignments  []*model.TaskAssignment
}

// DailyReconciliation 对账核心输出单元，按（人员，本地日历日）归桶
type DailyReconciliation struct {
	Person           model.PersonIdentity `json:"person"`
	Date             string               `json:"date"` // YYYY-MM-DD
	ClockedHours     float64              `json:"clockedHours"`
	TaskHours        float64              `json:"taskHours"`
	TaskCount        int                  `json:"taskCount"`
	UnaccountedHours float64              `json:"unaccountedHours"` // max(0, clocked - task)
	CoveragePercent  int                  `json:"coveragePercent"`  // 任务工时/打卡工时，取整百分比
	EstimatedCost    float64              `json:"estimatedCost"`    // 未覆盖工时 × 单价，仅为估算
	Flagged          bool                 `json:"flagged"`          // 打卡 ≥ 8h 且任务 < 2h（阈值可配）
}

// ExceptionKind 异常类型
type ExceptionKind string

const (
	ExceptionLongDay      ExceptionKind = "long_day"        // 单日打卡过长
	ExceptionLowHoursTask ExceptionKind = "low_hours_tasks" // 打卡很短却有完成任务
	ExceptionNoTasks      ExceptionKind = "no_tasks"        // 打卡较长却无完成任务
)

// Severity 异常级别
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Exception 单条人员-日期记录上的异常标记
type Exception struct {
	Kind     ExceptionKind `json:"kind"`
	Person   string        `json:"person"` // 显示名
	Date     string        `json:"date"`
	Detail   string        `json:"detail"`
	Severity Severity      `json:"severity"`
}

// PersonSummary 人员区间汇总
// 比率用区间总和计算（sum(task)/sum(clocked)），不是每日比率取平均
type PersonSummary struct {
	Person              model.PersonIdentity `json:"person"`
	Days                int                  `json:"days"`
	ClockedHours        float64              `json:"clockedHours"`
	TaskHours           float64              `json:"taskHours"`
	TaskCount           int                  `json:"taskCount"`
	UnaccountedHours    float64              `json:"unaccountedHours"`
	ProductivityPercent int                  `json:"productivityPercent"`
	EstimatedCost       float64              `json:"estimatedCost"`
	FlaggedDays         int                  `json:"flaggedDays"`
}

// DepartmentRollup 部门级打卡/任务工时对比
type DepartmentRollup struct {
	Department   string  `json:"department"`
	People       int     `json:"people"`
	ClockedHours float64 `json:"clockedHours"`
	TaskHours    float64 `json:"taskHours"`
	TaskCount    int     `json:"taskCount"`
}

// TrendPoint 周/月趋势点，比率按桶内总和计算
type TrendPoint struct {
	Bucket              string  `json:"bucket"` // 周："2024-W03"，月："2024-01"
	ClockedHours        float64 `json:"clockedHours"`
	TaskHours           float64 `json:"taskHours"`
	ProductivityPercent int     `json:"productivityPercent"`
}

// ClockInHeatmap 上钟时刻分布：星期（周日=0）× 小时
type ClockInHeatmap struct {
	Counts [7][24]int `json:"counts"`
}

// Quality 数据质量指标，随结果一并返回
// 静默降级是明确要避免的行为，所有跳过/未匹配都在这里计数
type Quality struct {
	ClockRows         int             `json:"clockRows"`         // 快照内打卡行数
	TaskRows          int             `json:"taskRows"`          // 快照内任务行数
	SkippedClockRows  int             `json:"skippedClockRows"`  // 引擎层跳过的坏打卡行
	SkippedTaskRows   int             `json:"skippedTaskRows"`   // 引擎层跳过的坏任务行
	UnassignedTasks   int             `json:"unassignedTasks"`   // 无执行人的任务数
	SharedTasks       int             `json:"sharedTasks"`       // 多执行人任务数（工时按人全额计，存在重复计数）
	ClockSourceEmpty  bool            `json:"clockSourceEmpty"`  // 时钟系统无数据（降级为仅任务口径）
	TaskSourceEmpty   bool            `json:"taskSourceEmpty"`   // 任务系统无数据
	NameMatch         namematch.Stats `json:"nameMatch"`
}

// Result 一次对账运行的完整输出，不落库，用后即弃
type Result struct {
	RunID       string                 `json:"runId"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Start       string                 `json:"start"`
	End         string                 `json:"end"`
	NoData      bool                   `json:"noData"` // 两套系统在区间内均无可用行
	Daily       []*DailyReconciliation `json:"daily"`
	Persons     []*PersonSummary       `json:"persons"`
	Exceptions  []Exception            `json:"exceptions"`
	Departments []DepartmentRollup     `json:"departments"`
	Weekly      []TrendPoint           `json:"weekly"`
	Monthly     []TrendPoint           `json:"monthly"`
	Heatmap     ClockInHeatmap         `json:"heatmap"`
	Quality     Quality                `json:"quality"`
}
