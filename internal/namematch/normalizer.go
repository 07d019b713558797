package namematch

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Normalize 姓名归一化
// 小写、去掉无语义的标点（句点/逗号/分号）、压缩内部空白
// 纯函数：不做任何消歧，"Maria G" 与 "Maria Gonzalez" 归一化后仍是两个不同的键，
// 消歧是 Resolver 的职责
func Normalize(raw string) string {
	name := strings.ToLower(raw)
	// 标点替换为空格而不是直接删除，保证 "R.Smith" 仍能切出两个词
	for _, p := range []string{".", ",", ";"} {
		name = strings.ReplaceAll(name, p, " ")
	}
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Tokens 归一化后按空格切词
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// tokenMatches 判断两个词是否视为同一个名字成分
// 相等，或一方是另一方的前缀（覆盖 "g" vs "gonzalez" 这类仅留首字母的写法）
func tokenMatches(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// TokenSubset 判断 a 的词集是否被 b 的词集覆盖（或反之）
// 每个词只能被消费一次，避免 "ana ana" 借同一个词匹配两次
func TokenSubset(a, b string) bool {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if len(ta) > len(tb) {
		ta, tb = tb, ta
	}
	return coveredBy(ta, tb)
}

// coveredBy 小词集的每个词都能在大词集中找到未被消费的匹配
func coveredBy(small, big []string) bool {
	used := make([]bool, len(big))
	for _, tok := range small {
		found := false
		for i, cand := range big {
			if used[i] {
				continue
			}
			if tokenMatches(tok, cand) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
