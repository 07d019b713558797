package namematch

import "sort"

// MatchKind 匹配方式
type MatchKind string

const (
	MatchExact     MatchKind = "exact"     // 归一化键完全相同
	MatchSubset    MatchKind = "subset"    // 词集覆盖（"Maria G" vs "Maria Gonzalez"）
	MatchFuzzy     MatchKind = "fuzzy"     // 相似度达到阈值
	MatchUnmatched MatchKind = "unmatched" // 无可接受候选
)

// Match 单个任务系统姓名的匹配结果
type Match struct {
	TaskName  string    `json:"taskName"`
	ClockName string    `json:"clockName,omitempty"` // 为空表示未匹配
	Kind      MatchKind `json:"kind"`
	Score     float64   `json:"score,omitempty"` // 仅模糊匹配填写
}

// Stats 匹配统计，随结果一并输出，让使用方能评估可信度
type Stats struct {
	TaskNames  int `json:"taskNames"`
	ClockNames int `json:"clockNames"`
	Exact      int `json:"exact"`
	Subset     int `json:"subset"`
	Fuzzy      int `json:"fuzzy"`
	Unmatched  int `json:"unmatched"`
}

// Result 一次解析的完整结果
// Mapping 只包含匹配成功的条目；未匹配姓名保留在 Matches 中（Kind=unmatched）
type Result struct {
	Mapping map[string]string `json:"mapping"`
	Matches []Match           `json:"matches"`
	Stats   Stats             `json:"stats"`
}

// Resolver 跨系统姓名解析器
// 贪心三级策略：精确 > 词集覆盖 > 相似度阈值
// 每级按任务姓名字典序扫描，候选被消费后即从后续匹配池移除，保证一对一且可复现
type Resolver struct {
	threshold float64
}

// NewResolver 创建解析器
func NewResolver(similarityThreshold float64) *Resolver {
	return &Resolver{threshold: similarityThreshold}
}

// Resolve 为每个任务系统姓名找出至多一个时钟系统姓名
// 两份姓名集合必须全量给出后才能开始匹配（全局一对一约束）
func (r *Resolver) Resolve(taskNames, clockNames []string) *Result {
	tasks := dedupeSorted(taskNames)
	clocks := dedupeSorted(clockNames)

	result := &Result{
		Mapping: make(map[string]string),
		Stats: Stats{
			TaskNames:  len(tasks),
			ClockNames: len(clocks),
		},
	}

	// 已被消费的时钟系统姓名（显式传递，不用包级状态）
	consumed := make(map[string]bool, len(clocks))
	matched := make(map[string]Match, len(tasks))

	r.exactPass(tasks, clocks, consumed, matched)
	r.subsetPass(tasks, clocks, consumed, matched)
	r.fuzzyPass(tasks, clocks, consumed, matched)

	for _, task := range tasks {
		m, ok := matched[task]
		if !ok {
			m = Match{TaskName: task, Kind: MatchUnmatched}
			result.Stats.Unmatched++
		} else {
			result.Mapping[task] = m.ClockName
			switch m.Kind {
			case MatchExact:
				result.Stats.Exact++
			case MatchSubset:
				result.Stats.Subset++
			case MatchFuzzy:
				result.Stats.Fuzzy++
			}
		}
		result.Matches = append(result.Matches, m)
	}

	return result
}

// exactPass 第一级：归一化键完全相同
func (r *Resolver) exactPass(tasks, clocks []string, consumed map[string]bool, matched map[string]Match) {
	// 归一化键 -> 时钟姓名（同键多名时保留字典序最小者）
	byKey := make(map[string]string, len(clocks))
	for _, clock := range clocks {
		key := Normalize(clock)
		if prev, ok := byKey[key]; !ok || clock < prev {
			byKey[key] = clock
		}
	}

	for _, task := range tasks {
		clock, ok := byKey[Normalize(task)]
		if !ok || consumed[clock] {
			continue
		}
		consumed[clock] = true
		matched[task] = Match{TaskName: task, ClockName: clock, Kind: MatchExact}
	}
}

// subsetPass 第二级：词集覆盖
// 同级候选视为同质量，取字典序最小者
func (r *Resolver) subsetPass(tasks, clocks []string, consumed map[string]bool, matched map[string]Match) {
	for _, task := range tasks {
		if _, ok := matched[task]; ok {
			continue
		}
		taskKey := Normalize(task)
		for _, clock := range clocks {
			if consumed[clock] {
				continue
			}
			if TokenSubset(taskKey, Normalize(clock)) {
				consumed[clock] = true
				matched[task] = Match{TaskName: task, ClockName: clock, Kind: MatchSubset}
				break
			}
		}
	}
}

// fuzzyPass 第三级：相似度阈值
// 取最高分；分数并列取字典序最小者
func (r *Resolver) fuzzyPass(tasks, clocks []string, consumed map[string]bool, matched map[string]Match) {
	for _, task := range tasks {
		if _, ok := matched[task]; ok {
			continue
		}
		taskKey := Normalize(task)

		best := ""
		bestScore := 0.0
		for _, clock := range clocks {
			if consumed[clock] {
				continue
			}
			score := Similarity(taskKey, Normalize(clock))
			if score < r.threshold {
				continue
			}
			if score > bestScore || (score == bestScore && (best == "" || clock < best)) {
				best = clock
				bestScore = score
			}
		}

		if best != "" {
			consumed[best] = true
			matched[task] = Match{TaskName: task, ClockName: best, Kind: MatchFuzzy, Score: bestScore}
		}
	}
}

// dedupeSorted 去重并排序，保证扫描顺序与输入顺序无关
func dedupeSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
