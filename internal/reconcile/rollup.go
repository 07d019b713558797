package reconcile

import (
	"fmt"
	"sort"
	"time"

	"renjoyops/internal/model"
)

// departmentRollup 部门级打卡/任务工时对比
// 纯投影，不携带 DailyReconciliation 之外的任何不变量
func departmentRollup(daily []*DailyReconciliation) []DepartmentRollup {
	byDept := make(map[string]*DepartmentRollup)
	people := make(map[string]map[string]bool)

	for _, d := range daily {
		dept := d.Person.Department
		if dept == "" {
			dept = "未分类"
		}
		r, ok := byDept[dept]
		if !ok {
			r = &DepartmentRollup{Department: dept}
			byDept[dept] = r
			people[dept] = make(map[string]bool)
		}
		r.ClockedHours += d.ClockedHours
		r.TaskHours += d.TaskHours
		r.TaskCount += d.TaskCount
		people[dept][d.Person.DisplayName] = true
	}

	out := make([]DepartmentRollup, 0, len(byDept))
	for dept, r := range byDept {
		r.People = len(people[dept])
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Department < out[j].Department
	})
	return out
}

// trendSeries 按桶聚合的趋势序列
// 比率在桶内按总和计算，不是每日比率取平均（与人员汇总同样的口径理由）
func trendSeries(daily []*DailyReconciliation, bucket func(date string) string) []TrendPoint {
	byBucket := make(map[string]*TrendPoint)
	for _, d := range daily {
		b := bucket(d.Date)
		if b == "" {
			continue
		}
		p, ok := byBucket[b]
		if !ok {
			p = &TrendPoint{Bucket: b}
			byBucket[b] = p
		}
		p.ClockedHours += d.ClockedHours
		p.TaskHours += d.TaskHours
	}

	out := make([]TrendPoint, 0, len(byBucket))
	for _, p := range byBucket {
		p.ProductivityPercent = coveragePercent(p.TaskHours, p.ClockedHours)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Bucket < out[j].Bucket
	})
	return out
}

// weekBucket ISO 周桶："2024-W02"
func weekBucket(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// monthBucket 月桶："2024-01"
func monthBucket(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// clockInHeatmap 上钟时刻分布（星期 × 小时）
// 只统计日期范围内、且过滤后仍在结果里的人员的打卡事件
func clockInHeatmap(entries []*model.ClockEntry, identities *identitySet, included map[string]bool, opts Options) ClockInHeatmap {
	start := opts.Start.Format("2006-01-02")
	end := opts.End.Format("2006-01-02")

	var hm ClockInHeatmap
	for _, c := range entries {
		p, ok := identities.byClock[c.EmployeeName]
		if !ok || !included[p.DisplayName] {
			continue
		}
		if d := c.LocalDate(); d < start || d > end {
			continue
		}
		hm.Counts[int(c.ClockIn.Weekday())][c.ClockIn.Hour()]++
	}
	return hm
}
