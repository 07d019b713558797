package parser

import "strings"

// SheetRecognizer Sheet 类型识别器
// 导出文件的 Sheet 名与列名因部署而异，只能按关键列命中率 + Sheet 名辅助判定
type SheetRecognizer struct{}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{}
}

// Recognize 识别 Sheet 类型
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	// 规范化列名
	normalized := make([]string, len(columnNames))
	for i, col := range columnNames {
		normalized[i] = NormalizeColumnName(col)
	}

	// 依次尝试各种类型，关联表先于工单表（关联表列更少，特征更强）
	if result := r.recognizeAssignments(sheetName, normalized); result.Confidence >= 0.5 {
		return result
	}

	if result := r.recognizeTimesheet(sheetName, normalized); result.Confidence >= 0.5 {
		return result
	}

	if result := r.recognizeTasks(sheetName, normalized); result.Confidence >= 0.5 {
		return result
	}

	// 无法识别
	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  SheetTypeUnknown,
		Confidence: 0,
	}
}

// recognizeTimesheet 识别时钟系统班次表
func (r *SheetRecognizer) recognizeTimesheet(sheetName string, columns []string) SheetRecognitionResult {
	keyFields := []string{
		aliasEmployeeName,
		aliasClockIn,
		aliasDurationHours + "|" + aliasClockOut,
	}

	confidence := matchRatio(keyFields, columns)

	// Sheet 名辅助判定
	lower := strings.ToLower(sheetName)
	if ContainsAny(lower, []string{"time", "clock", "shift", "punch"}) {
		confidence += 0.2
	}

	sheetType := SheetTypeUnknown
	if confidence >= 0.5 {
		sheetType = SheetTypeTimesheet
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  sheetType,
		Confidence: confidence,
	}
}

// recognizeTasks 识别任务系统工单表
func (r *SheetRecognizer) recognizeTasks(sheetName string, columns []string) SheetRecognitionResult {
	keyFields := []string{
		aliasTaskKey,
		aliasCompletedAt,
		aliasDurationMinutes,
		aliasDepartment,
	}

	confidence := matchRatio(keyFields, columns)

	lower := strings.ToLower(sheetName)
	if ContainsAny(lower, []string{"task", "work order", "job", "cleaning"}) {
		confidence += 0.2
	}

	sheetType := SheetTypeUnknown
	if confidence >= 0.5 {
		sheetType = SheetTypeTasks
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  sheetType,
		Confidence: confidence,
	}
}

// recognizeAssignments 识别任务-执行人关联表
// 特征：基本只有任务标识 + 执行人两列
func (r *SheetRecognizer) recognizeAssignments(sheetName string, columns []string) SheetRecognitionResult {
	hasTaskKey := false
	hasAssignee := false
	for _, col := range columns {
		if MatchAlias(col, aliasTaskKey) {
			hasTaskKey = true
		}
		if MatchAlias(col, aliasAssigneeName) {
			hasAssignee = true
		}
	}

	if !hasTaskKey || !hasAssignee {
		return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeUnknown, Confidence: 0}
	}

	confidence := 0.7
	lower := strings.ToLower(sheetName)
	if strings.Contains(lower, "assign") {
		confidence += 0.3
	}
	// 工单表自身也可能带执行人列，列数多时降低置信度
	if len(columns) > 4 {
		confidence -= 0.3
	}

	sheetType := SheetTypeUnknown
	if confidence >= 0.5 {
		sheetType = SheetTypeAssignments
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  sheetType,
		Confidence: confidence,
	}
}

// matchRatio 关键字段命中率（别名组内命中一个即算命中）
func matchRatio(keyFields []string, columns []string) float64 {
	matchCount := 0
	for _, field := range keyFields {
		for _, col := range columns {
			if MatchAlias(col, field) {
				matchCount++
				break
			}
		}
	}
	return float64(matchCount) / float64(len(keyFields))
}
