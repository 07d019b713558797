package parser

// 各目标字段的列名别名表（规范化后等值比较，| 分隔）
// 覆盖两套系统已知部署里见过的列头写法
const (
	aliasEmployeeName  = "employee|employee name|staff|staff name|worker|worker name|name"
	aliasClockIn       = "clock in|clockin|time in|start|start time|punch in|shift start"
	aliasClockOut      = "clock out|clockout|time out|end|end time|punch out|shift end"
	aliasDurationHours = "hours|total hours|duration|hrs|hours worked"
	aliasJobLabel      = "job|position|role|department|dept|location|job label"

	aliasTaskKey         = "task id|task|id|task key|task #|work order|work order #"
	aliasDepartment      = "department|dept|category|type|service"
	aliasCompletedAt     = "completed|completed at|completion|completion date|done at|finished|finished at|date completed"
	aliasDurationMinutes = "duration|minutes|mins|time spent|duration min"
	aliasAssignees       = "assignee|assignees|assigned to|assigned|cleaner|cleaners|staff"

	aliasAssigneeName = "assignee|assignee name|assigned to|staff|staff name|name|cleaner"
)

// FieldMapper 字段映射器：规范化列名 → 目标字段键
type FieldMapper struct{}

// NewFieldMapper 创建字段映射器
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

// MapTimesheet 映射班次表列
func (m *FieldMapper) MapTimesheet(columnNames []string) map[int]FieldMapping {
	specs := []struct {
		field   string
		aliases string
	}{
		{FieldEmployeeName, aliasEmployeeName},
		{FieldClockIn, aliasClockIn},
		{FieldClockOut, aliasClockOut},
		{FieldDurationHrs, aliasDurationHours},
		{FieldJobLabel, aliasJobLabel},
	}
	return m.mapColumns(columnNames, specs)
}

// MapTasks 映射工单表列
func (m *FieldMapper) MapTasks(columnNames []string) map[int]FieldMapping {
	specs := []struct {
		field   string
		aliases string
	}{
		{FieldTaskKey, aliasTaskKey},
		{FieldDepartment, aliasDepartment},
		{FieldCompletedAt, aliasCompletedAt},
		{FieldDurationMin, aliasDurationMinutes},
		{FieldAssignees, aliasAssignees},
	}
	return m.mapColumns(columnNames, specs)
}

// MapAssignments 映射关联表列
func (m *FieldMapper) MapAssignments(columnNames []string) map[int]FieldMapping {
	specs := []struct {
		field   string
		aliases string
	}{
		{FieldTaskKey, aliasTaskKey},
		{FieldAssigneeName, aliasAssigneeName},
	}
	return m.mapColumns(columnNames, specs)
}

// mapColumns 逐列匹配别名表；每个目标字段只取首个命中的列
func (m *FieldMapper) mapColumns(columnNames []string, specs []struct {
	field   string
	aliases string
}) map[int]FieldMapping {
	mappings := make(map[int]FieldMapping)
	taken := make(map[string]bool)

	for idx, raw := range columnNames {
		col := NormalizeColumnName(raw)
		if col == "" {
			continue
		}
		for _, spec := range specs {
			if taken[spec.field] {
				continue
			}
			if MatchAlias(col, spec.aliases) {
				mappings[idx] = FieldMapping{
					ColumnIndex: idx,
					ColumnName:  raw,
					Field:       spec.field,
				}
				taken[spec.field] = true
				break
			}
		}
	}

	return mappings
}
