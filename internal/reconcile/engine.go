package reconcile

import (
	"time"

	"github.com/google/uuid"

	"renjoyops/internal/config"
	"renjoyops/internal/model"
	"renjoyops/internal/namematch"
)

// Engine 工时对账引擎
// 纯批处理：对拉取到的快照做单遍计算，无共享状态，同样输入必然得到同样输出
type Engine struct {
	cfg      config.ReconcileConfig
	resolver *namematch.Resolver
}

// NewEngine 创建对账引擎
func NewEngine(cfg config.ReconcileConfig) *Engine {
	return &Engine{
		cfg:      cfg,
		resolver: namematch.NewResolver(cfg.SimilarityThreshold),
	}
}

// Run 执行一次对账
// 流程：姓名解析（全局，先行）→ 按人按日归桶 → 指标/异常 → 汇总视图
func (e *Engine) Run(snapshot *Snapshot, opts Options) *Result {
	rate := opts.HourlyRate
	if rate <= 0 {
		rate = e.cfg.HourlyRate
	}

	result := &Result{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
		Start:       opts.Start.Format("2006-01-02"),
		End:         opts.End.Format("2006-01-02"),
	}

	// 引擎层行校验：坏行跳过并计数，不让单行毁掉整次运行
	clockEntries := e.usableClockEntries(snapshot, &result.Quality)
	tasks, assignees := e.usableTasks(snapshot, &result.Quality)

	result.Quality.ClockRows = len(clockEntries)
	result.Quality.TaskRows = len(tasks)
	result.Quality.ClockSourceEmpty = len(clockEntries) == 0
	result.Quality.TaskSourceEmpty = len(tasks) == 0

	// 两套系统都拿不到可用行：明确返回"无数据"，不能输出一个会被误读成
	// "对账完美"的空集
	if len(clockEntries) == 0 && len(tasks) == 0 {
		result.NoData = true
		return result
	}

	// 姓名解析必须先看到两侧全量姓名集合，之后的归桶才能并行按人拆分
	match := e.resolver.Resolve(taskNameSet(assignees), clockNameSet(clockEntries))
	result.Quality.NameMatch = match.Stats

	identities := buildIdentities(match, clockEntries, tasks, assignees)

	// 按（人员，本地日）归桶
	daily := e.aggregate(identities, clockEntries, tasks, assignees, opts)

	// 指标与当日标记
	for _, d := range daily {
		e.finalizeDaily(d, rate)
	}

	// 过滤：部门过滤与最小打卡时长过滤都在汇总之前生效
	daily = e.applyFilters(daily, opts)

	result.Daily = sortDaily(daily)
	result.Persons = e.personSummaries(result.Daily, rate)
	result.Exceptions = e.detectExceptions(result.Daily)
	result.Departments = departmentRollup(result.Daily)
	result.Weekly = trendSeries(result.Daily, weekBucket)
	result.Monthly = trendSeries(result.Daily, monthBucket)

	included := make(map[string]bool, len(result.Daily))
	for _, d := range result.Daily {
		included[d.Person.DisplayName] = true
	}
	result.Heatmap = clockInHeatmap(clockEntries, identities, included, opts)

	return result
}

// usableClockEntries 过滤掉引擎层无法使用的打卡行
func (e *Engine) usableClockEntries(snapshot *Snapshot, q *Quality) []*model.ClockEntry {
	var out []*model.ClockEntry
	for _, c := range snapshot.ClockEntries {
		if c.EmployeeName == "" || c.ClockIn.IsZero() || c.DurationHours < 0 {
			q.SkippedClockRows++
			continue
		}
		out = append(out, c)
	}
	return out
}

// usableTasks 过滤坏任务行，并返回任务键 -> 执行人列表
func (e *Engine) usableTasks(snapshot *Snapshot, q *Quality) ([]*model.TaskRecord, map[string][]string) {
	assignees := make(map[string][]string)
	for _, a := range snapshot.Assignments {
		if a.TaskKey == "" || a.AssigneeName == "" {
			continue
		}
		assignees[a.TaskKey] = append(assignees[a.TaskKey], a.AssigneeName)
	}

	var out []*model.TaskRecord
	for _, t := range snapshot.Tasks {
		if t.CompletedAt.IsZero() || t.DurationMinutes < 0 {
			q.SkippedTaskRows++
			continue
		}
		switch n := len(assignees[t.TaskKey]); {
		case n == 0:
			// 无执行人的任务无法归因，计数后跳过
			q.UnassignedTasks++
		case n > 1:
			// 多人任务工时对每个执行人全额计入（历史口径，刻意保留）
			q.SharedTasks++
		}
		out = append(out, t)
	}
	return out, assignees
}

// taskNameSet 任务系统出现过的执行人姓名集合
func taskNameSet(assignees map[string][]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, list := range assignees {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// clockNameSet 时钟系统出现过的员工姓名集合
func clockNameSet(entries []*model.ClockEntry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range entries {
		if !seen[c.EmployeeName] {
			seen[c.EmployeeName] = true
			names = append(names, c.EmployeeName)
		}
	}
	return names
}
