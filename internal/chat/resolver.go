// Package chat turns user chat lines into interpreter requests: numeric task
// references are rewritten to durable ids, then the text is relayed.
package chat

import (
	"regexp"
	"strconv"
	"strings"

	"ai_todo/internal/domain"
)

// taskRefPattern matches "#3", "task 3", "task #3", "number 3", "number #3".
// Alternation is leftmost-first, so "task #3" is consumed whole.
var taskRefPattern = regexp.MustCompile(`(?i)#(\d+)|\btask\s+#?(\d+)|\bnumber\s+#?(\d+)`)

// DisplayOrder returns incomplete tasks followed by completed ones, each group
// keeping its relative order. Task number N is the Nth element (1-based).
func DisplayOrder(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range tasks {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// ReferencePhrase is what an in-range reference is rewritten to.
func ReferencePhrase(id string) string {
	return "task ID " + id
}

// ResolveReferences rewrites in-range numeric task references in text to
// durable-id references. Out-of-range numbers are left as typed.
func ResolveReferences(text string, tasks []*domain.Task) string {
	ordered := DisplayOrder(tasks)
	matches := taskRefPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	out := text
	// last match first so earlier offsets stay valid
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		n, ok := referenceNumber(text, m)
		if !ok || n < 1 || n > len(ordered) {
			continue
		}
		out = out[:m[0]] + ReferencePhrase(ordered[n-1].ID) + out[m[1]:]
	}
	return out
}

func referenceNumber(text string, loc []int) (int, bool) {
	for g := 1; g*2+1 < len(loc); g++ {
		start, end := loc[g*2], loc[g*2+1]
		if start < 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(text[start:end]))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
