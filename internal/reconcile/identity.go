package reconcile

import (
	"sort"

	"renjoyops/internal/model"
	"renjoyops/internal/namematch"
)

// identitySet 解析完成的身份集合，提供两侧姓名到身份的索引
type identitySet struct {
	byTask  map[string]*model.PersonIdentity // 任务系统姓名 -> 身份
	byClock map[string]*model.PersonIdentity // 时钟系统姓名 -> 身份
}

// buildIdentities 由姓名匹配结果构造身份集合
// 显示名取任务系统拼写（归因事实来源）；仅存在于时钟系统的姓名也会生成身份，
// 单侧数据同样是有效信号，不丢弃
func buildIdentities(match *namematch.Result, clockEntries []*model.ClockEntry, tasks []*model.TaskRecord, assignees map[string][]string) *identitySet {
	set := &identitySet{
		byTask:  make(map[string]*model.PersonIdentity),
		byClock: make(map[string]*model.PersonIdentity),
	}

	clockDepts := clockDepartments(clockEntries)
	taskDepts := taskDepartments(tasks, assignees)

	for _, m := range match.Matches {
		p := &model.PersonIdentity{
			DisplayName: m.TaskName,
			ClockName:   m.ClockName,
		}
		// 部门推断：有时钟侧记录时以时钟侧标签为准（时间表挂部门更可靠），
		// 否则退回任务侧类别。规则固定，保证可复现
		if m.ClockName != "" {
			p.Department = dominantLabel(clockDepts[m.ClockName])
		}
		if p.Department == "" {
			p.Department = dominantLabel(taskDepts[m.TaskName])
		}

		set.byTask[m.TaskName] = p
		if m.ClockName != "" {
			set.byClock[m.ClockName] = p
		}
	}

	// 未被任何任务姓名消费的时钟姓名：生成仅时钟侧身份
	for clockName := range clockDepts {
		if _, ok := set.byClock[clockName]; ok {
			continue
		}
		set.byClock[clockName] = &model.PersonIdentity{
			DisplayName: clockName,
			ClockName:   clockName,
			Department:  dominantLabel(clockDepts[clockName]),
		}
	}

	return set
}

// clockDepartments 时钟系统每个姓名出现过的岗位标签计数
func clockDepartments(entries []*model.ClockEntry) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, c := range entries {
		if out[c.EmployeeName] == nil {
			out[c.EmployeeName] = make(map[string]int)
		}
		if c.JobLabel != "" {
			out[c.EmployeeName][c.JobLabel]++
		}
	}
	return out
}

// taskDepartments 任务系统每个执行人出现过的部门计数
func taskDepartments(tasks []*model.TaskRecord, assignees map[string][]string) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, t := range tasks {
		if t.Department == "" {
			continue
		}
		for _, name := range assignees[t.TaskKey] {
			if out[name] == nil {
				out[name] = make(map[string]int)
			}
			out[name][t.Department]++
		}
	}
	return out
}

// dominantLabel 取出现次数最多的标签；并列取字典序最小者
func dominantLabel(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := ""
	bestCount := 0
	for _, label := range labels {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}
