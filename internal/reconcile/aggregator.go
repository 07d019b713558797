package reconcile

import (
	"sort"

	"renjoyops/internal/model"
)

// aggregate 按（人员，本地日历日）归并两侧工时
// 打卡行按上钟时间的本地日归桶，任务行按完成时间的本地日归桶——两套系统
// 时钟相互独立，日期不一致正是引擎要暴露的现象，不在这里"修正"
func (e *Engine) aggregate(identities *identitySet, clockEntries []*model.ClockEntry, tasks []*model.TaskRecord, assignees map[string][]string, opts Options) map[string]*DailyReconciliation {
	daily := make(map[string]*DailyReconciliation)

	// YYYY-MM-DD 字典序与时间序一致，区间判断直接比串
	start := opts.Start.Format("2006-01-02")
	end := opts.End.Format("2006-01-02")
	inRange := func(date string) bool {
		return date >= start && date <= end
	}

	get := func(p *model.PersonIdentity, date string) *DailyReconciliation {
		key := p.DisplayName + "\x00" + date
		d, ok := daily[key]
		if !ok {
			d = &DailyReconciliation{Person: *p, Date: date}
			daily[key] = d
		}
		return d
	}

	for _, c := range clockEntries {
		p, ok := identities.byClock[c.EmployeeName]
		if !ok || !inRange(c.LocalDate()) {
			continue
		}
		d := get(p, c.LocalDate())
		d.ClockedHours += c.DurationHours
	}

	for _, t := range tasks {
		if !inRange(t.LocalDate()) {
			continue
		}
		for _, name := range assignees[t.TaskKey] {
			p, ok := identities.byTask[name]
			if !ok {
				continue
			}
			d := get(p, t.LocalDate())
			d.TaskHours += t.DurationMinutes / 60.0
			d.TaskCount++
		}
	}

	return daily
}

// applyFilters 汇总前过滤：部门过滤 + 最小打卡时长过滤
// 最小打卡时长按人员区间总和判断，整人剔除，避免把同一人的部分日期切掉
func (e *Engine) applyFilters(daily map[string]*DailyReconciliation, opts Options) map[string]*DailyReconciliation {
	if opts.Department == "" && opts.MinClockedHours <= 0 {
		return daily
	}

	clockedByPerson := make(map[string]float64)
	for _, d := range daily {
		clockedByPerson[d.Person.DisplayName] += d.ClockedHours
	}

	out := make(map[string]*DailyReconciliation, len(daily))
	for key, d := range daily {
		if opts.Department != "" && d.Person.Department != opts.Department {
			continue
		}
		if opts.MinClockedHours > 0 && clockedByPerson[d.Person.DisplayName] < opts.MinClockedHours {
			continue
		}
		out[key] = d
	}
	return out
}

// sortDaily 稳定输出顺序：先按人员显示名，再按日期
func sortDaily(daily map[string]*DailyReconciliation) []*DailyReconciliation {
	out := make([]*DailyReconciliation, 0, len(daily))
	for _, d := range daily {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Person.DisplayName != out[j].Person.DisplayName {
			return out[i].Person.DisplayName < out[j].Person.DisplayName
		}
		return out[i].Date < out[j].Date
	})
	return out
}
