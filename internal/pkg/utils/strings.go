package utils

import (
	"sort"
	"strings"
)

func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// FormatList renders values the way reports print allowed values: [a, b].
func FormatList(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}

func Contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// SortedDistinct drops blank values and duplicates and sorts the rest.
func SortedDistinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if IsBlank(value) {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	sort.Strings(result)
	return result
}

func CountBy(values []string) map[string]int {
	counts := make(map[string]int, len(values))
	for _, value := range values {
		counts[value]++
	}
	return counts
}
