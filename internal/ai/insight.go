package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultCause  = "Meal composition analyzed."
	DefaultResult = "This meal provides energy and nutrients to support your daily activities."
)

type MealInsight struct {
	Cause  string `json:"cause"`
	Result string `json:"result"`
}

// ParseMealInsight reads {"cause","result"} out of a model reply. Replies
// wrapped in code fences or surrounded by prose are accepted; anything else
// falls back to scanning labelled lines, then to the default texts.
func ParseMealInsight(reply string) MealInsight {
	text := stripCodeFences(reply)

	if object, ok := extractJSONObject(text); ok {
		insight := MealInsight{
			Cause:  strings.TrimSpace(gjson.Get(object, "cause").String()),
			Result: strings.TrimSpace(gjson.Get(object, "result").String()),
		}
		if insight.Cause == "" {
			insight.Cause = DefaultCause
		}
		if insight.Result == "" {
			insight.Result = DefaultResult
		}
		return insight
	}
	return scanLabelledLines(text)
}

func stripCodeFences(reply string) string {
	text := strings.ReplaceAll(reply, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", false
	}
	return candidate, true
}

func scanLabelledLines(text string) MealInsight {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	insight := MealInsight{Cause: DefaultCause, Result: DefaultResult}
	lineAt := func(index int) string {
		if index < len(lines) {
			return lines[index]
		}
		return ""
	}

	for index, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "cause") || strings.Contains(lower, "issue") {
			if next := lineAt(index + 1); next != "" {
				insight.Cause = next
			}
		}
		if strings.Contains(lower, "result") || strings.Contains(lower, "impact") {
			if joined := strings.TrimSpace(lineAt(index+1) + " " + lineAt(index+2)); joined != "" {
				insight.Result = joined
			}
			break
		}
	}
	return insight
}
