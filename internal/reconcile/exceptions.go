package reconcile

import (
	"fmt"
	"sort"
)

// detectExceptions 扫描每条人员-日期记录，按配置阈值产出异常
// 检测逐条独立、与顺序无关；输出排序固定：error 在前，再按人员/日期稳定排序
func (e *Engine) detectExceptions(daily []*DailyReconciliation) []Exception {
	exceptions := make([]Exception, 0)

	for _, d := range daily {
		// 单日打卡过长
		if d.ClockedHours >= e.cfg.LongDayHours {
			exceptions = append(exceptions, Exception{
				Kind:     ExceptionLongDay,
				Person:   d.Person.DisplayName,
				Date:     d.Date,
				Detail:   fmt.Sprintf("打卡 %.1f 小时，达到 %.1f 小时阈值", d.ClockedHours, e.cfg.LongDayHours),
				Severity: SeverityError,
			})
		}

		// 打卡很短却有完成任务
		if d.ClockedHours > 0 && d.ClockedHours < e.cfg.LowClockedHours && d.TaskCount > 0 {
			exceptions = append(exceptions, Exception{
				Kind:     ExceptionLowHoursTask,
				Person:   d.Person.DisplayName,
				Date:     d.Date,
				Detail:   fmt.Sprintf("仅打卡 %.1f 小时却完成 %d 个任务", d.ClockedHours, d.TaskCount),
				Severity: SeverityWarning,
			})
		}

		// 打卡较长却无完成任务
		if d.ClockedHours > e.cfg.NoTaskMinHours && d.TaskCount == 0 {
			exceptions = append(exceptions, Exception{
				Kind:     ExceptionNoTasks,
				Person:   d.Person.DisplayName,
				Date:     d.Date,
				Detail:   fmt.Sprintf("打卡 %.1f 小时但无任何完成任务记录", d.ClockedHours),
				Severity: SeverityWarning,
			})
		}
	}

	sort.SliceStable(exceptions, func(i, j int) bool {
		a, b := exceptions[i], exceptions[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Person != b.Person {
			return a.Person < b.Person
		}
		return a.Date < b.Date
	})

	return exceptions
}
