package reconcile

import (
	"math"
	"sort"
)

// finalizeDaily 计算单条记录的派生指标与当日标记
func (e *Engine) finalizeDaily(d *DailyReconciliation, rate float64) {
	d.UnaccountedHours = math.Max(0, d.ClockedHours-d.TaskHours)
	d.CoveragePercent = coveragePercent(d.TaskHours, d.ClockedHours)
	d.EstimatedCost = d.UnaccountedHours * rate

	// 当日标记：打卡很长但任务工时很少。这是日级布尔标记，
	// 和异常清单（Exception）是两套独立口径
	d.Flagged = d.ClockedHours >= e.cfg.FlagClockedHours && d.TaskHours < e.cfg.FlagTaskHours
}

// coveragePercent 覆盖率（取整百分比）
// 打卡为零但有任务 → 100%，表示"有完成任务但无对应打卡记录"；
// 比率可以超过 100%（漏打卡、多人任务重复计数），刻意不截断，留给分析者看
func coveragePercent(taskHours, clockedHours float64) int {
	if clockedHours > 0 {
		return int(math.Round(taskHours / clockedHours * 100))
	}
	if taskHours > 0 {
		return 100
	}
	return 0
}

// personSummaries 人员区间汇总
// 比率用区间总和（sum(task)/sum(clocked)）计算，避免被打卡极少的日子拉偏
func (e *Engine) personSummaries(daily []*DailyReconciliation, rate float64) []*PersonSummary {
	byPerson := make(map[string]*PersonSummary)
	for _, d := range daily {
		s, ok := byPerson[d.Person.DisplayName]
		if !ok {
			s = &PersonSummary{Person: d.Person}
			byPerson[d.Person.DisplayName] = s
		}
		s.Days++
		s.ClockedHours += d.ClockedHours
		s.TaskHours += d.TaskHours
		s.TaskCount += d.TaskCount
		if d.Flagged {
			s.FlaggedDays++
		}
	}

	out := make([]*PersonSummary, 0, len(byPerson))
	for _, s := range byPerson {
		s.UnaccountedHours = math.Max(0, s.ClockedHours-s.TaskHours)
		s.ProductivityPercent = coveragePercent(s.TaskHours, s.ClockedHours)
		s.EstimatedCost = s.UnaccountedHours * rate
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Person.DisplayName < out[j].Person.DisplayName
	})
	return out
}
