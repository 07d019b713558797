package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var columnSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名：小写、去首尾空白、下划线视为空格、压缩空白、
// 去掉括号备注（"duration (min)" → "duration"）
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	// 去括号备注
	if i := strings.IndexAny(name, "(["); i > 0 {
		name = name[:i]
	}
	name = columnSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// MatchAlias 列名是否命中别名列表（别名用 | 分隔，逐个等值比较）
func MatchAlias(normalized, aliases string) bool {
	for _, alias := range strings.Split(aliases, "|") {
		if normalized == alias {
			return true
		}
	}
	return false
}

// ContainsAny 字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// 时间戳解析尝试的格式，按出现频率排列
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseTimestamp 解析时间戳
// 两套系统的导出格式不一，逐格式尝试；Excel 序列数也在这里兜住
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}

	// Excel 序列数（自 1899-12-30 起的天数）
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 20000 && serial < 80000 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.Local)
		return base.Add(time.Duration(serial * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp: %q", value)
}

// ParseHours 解析小时时长："7.5"、"7:30"、"7h 30m"
func ParseHours(value string) (float64, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f, nil
	}

	// "7:30" → 7.5
	if parts := strings.Split(value, ":"); len(parts) == 2 {
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil && m >= 0 && m < 60 {
			return float64(h) + float64(m)/60.0, nil
		}
	}

	// "7h 30m" / "7h"
	re := regexp.MustCompile(`^(\d+)\s*h(?:\s*(\d+)\s*m)?$`)
	if m := re.FindStringSubmatch(value); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		return float64(h) + float64(mins)/60.0, nil
	}

	return 0, fmt.Errorf("unparseable duration: %q", value)
}

// ParseMinutes 解析分钟时长："45"、"45.5"、"1:30"（时:分 → 90）
func ParseMinutes(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f, nil
	}

	if parts := strings.Split(value, ":"); len(parts) == 2 {
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil && m >= 0 && m < 60 {
			return float64(h*60 + m), nil
		}
	}

	return 0, fmt.Errorf("unparseable duration: %q", value)
}

// SplitAssignees 拆分内联执行人列："Maria G, Ana Lopez" / "Maria G & Ana"
func SplitAssignees(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	value = strings.ReplaceAll(value, "&", ",")
	value = strings.ReplaceAll(value, ";", ",")
	var out []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
