package lineinfileplugin

import (
	"regexp"
	"strings"
)

// MatchResult describes the outcome of applying a regex over file lines.
type MatchResult struct {
	Matched      bool
	LineNumbers  []int
	MatchedLines []string
	MatchCount   int
}

func findMatches(lines []string, pattern *regexp.Regexp) *MatchResult {
	result := &MatchResult{}
	if pattern == nil {
		return result
	}
	for idx, line := range lines {
		if pattern.MatchString(line) {
			result.Matched = true
			result.LineNumbers = append(result.LineNumbers, idx)
			result.MatchedLines = append(result.MatchedLines, line)
			result.MatchCount++
		}
	}
	return result
}

// commentMatched prefixes every matched line with prefix, keeping its
// indentation. The input slice is not modified.
func commentMatched(lines []string, result *MatchResult, prefix string) ([]string, bool) {
	if result == nil || !result.Matched {
		return lines, false
	}
	updated := append([]string(nil), lines...)
	for _, idx := range result.LineNumbers {
		line := updated[idx]
		body := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(body)]
		updated[idx] = indent + prefix + body
	}
	return updated, true
}
