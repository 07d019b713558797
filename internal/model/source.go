package model

import "time"

// ClockEntry 时钟系统班次记录（快照数据库模型）
// 一行对应一次打卡：员工原始姓名、上钟时间、时长（小时）
type ClockEntry struct {
	ID            int64     `json:"id"`
	EmployeeName  string    `json:"employeeName"`  // 原始姓名字符串，未做任何归一化
	ClockIn       time.Time `json:"clockIn"`       // 上钟时间戳
	LocalDay      string    `json:"localDay"`      // 入库时预计算的本地日历日，时间戳跨时区往返不会漂移
	DurationHours float64   `json:"durationHours"` // 班次时长（小时）
	JobLabel      string    `json:"jobLabel"`      // 来源岗位/部门标签
	RowNo         int       `json:"rowNo"`

	// 元数据
	SourceSheet string    `json:"sourceSheet"`
	SourceFile  string    `json:"sourceFile"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LocalDate 上钟时间所在的本地日历日（YYYY-MM-DD）
// 两套系统时钟相互独立，按各自时间戳的本地日归桶。数据库读出的行
// 优先用入库时预计算的值，时间戳本身可能已被驱动转成别的时区
func (c *ClockEntry) LocalDate() string {
	if c.LocalDay != "" {
		return c.LocalDay
	}
	return c.ClockIn.Format("2006-01-02")
}

// TaskRecord 任务系统已完成工单（快照数据库模型）
type TaskRecord struct {
	ID              int64     `json:"id"`
	TaskKey         string    `json:"taskKey"`    // 任务系统内的任务标识
	Department      string    `json:"department"` // 部门/类别
	CompletedAt     time.Time `json:"completedAt"`
	LocalDay        string    `json:"localDay"`        // 入库时预计算的本地日历日
	DurationMinutes float64   `json:"durationMinutes"` // 记录工时（分钟）
	RowNo           int       `json:"rowNo"`

	// 元数据
	SourceSheet string    `json:"sourceSheet"`
	SourceFile  string    `json:"sourceFile"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LocalDate 完成时间所在的本地日历日（YYYY-MM-DD）
func (t *TaskRecord) LocalDate() string {
	if t.LocalDay != "" {
		return t.LocalDay
	}
	return t.CompletedAt.Format("2006-01-02")
}

// TaskAssignment 任务-执行人关联（快照数据库模型）
// 一个任务可关联 0/1/多个执行人；多人任务的工时对每人全额计入（不拆分）
type TaskAssignment struct {
	ID           int64  `json:"id"`
	TaskKey      string `json:"taskKey"`
	AssigneeName string `json:"assigneeName"` // 原始姓名字符串

	SourceSheet string    `json:"sourceSheet"`
	SourceFile  string    `json:"sourceFile"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PersonIdentity 跨系统解析后的人员身份
// 显示名取任务系统拼写（归因事实来源）；ClockName 为空表示仅存在于任务系统
type PersonIdentity struct {
	DisplayName string `json:"displayName"`
	ClockName   string `json:"clockName,omitempty"`
	Department  string `json:"department"`
}

// HasClock 是否匹配到了时钟系统姓名
func (p PersonIdentity) HasClock() bool {
	return p.ClockName != ""
}
