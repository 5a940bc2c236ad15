package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertStateCount:
		return assertStateCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Action == a.Action && matchSubset(ev.Args, a.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s with args %v", a.Action, a.Args),
		Actual:   "not found in trace: " + summarize(trace),
	}
}

// assertTraceOrder checks that the actions appear as a subsequence of the
// trace. Intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Actions) && ev.Action == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Actions, " -> "),
		Actual:   summarize(trace),
	}
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Action == a.Action && matchSubset(ev.Args, a.Args) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s x%d", a.Action, a.Count),
		Actual:   fmt.Sprintf("x%d", count),
	}
}

func assertFinalState(result *Result, a Assertion) error {
	rows := filterRows(tableRows(result, a.Table), a.Where)
	if len(rows) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("a %s row where %v", a.Table, a.Where),
			Actual:   "no matching row",
		}
	}
	if !matchSubset(rows[0], a.Expect) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%v", a.Expect),
			Actual:   fmt.Sprintf("%v", rows[0]),
		}
	}
	return nil
}

func assertStateCount(result *Result, a Assertion) error {
	rows := filterRows(tableRows(result, a.Table), a.Where)
	if len(rows) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertStateCount,
		Expected: fmt.Sprintf("%d %s rows where %v", a.Count, a.Table, a.Where),
		Actual:   fmt.Sprintf("%d", len(rows)),
	}
}

func tableRows(result *Result, table string) []map[string]interface{} {
	var source interface{}
	switch table {
	case TableHistory:
		source = result.History
	case TableSessions:
		source = result.Sessions
	default:
		return nil
	}
	var rows []map[string]interface{}
	if items, ok := normalize(source).([]interface{}); ok {
		for _, item := range items {
			if row, ok := item.(map[string]interface{}); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func filterRows(rows []map[string]interface{}, where map[string]interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	for _, row := range rows {
		if matchSubset(row, where) {
			out = append(out, row)
		}
	}
	return out
}

// matchSubset reports whether every expected field is present in actual
// with an equal value. Numbers compare by value regardless of Go type.
func matchSubset(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

// normalize round-trips v through JSON so YAML ints, Go ints and structs
// compare as their JSON forms.
func normalize(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func summarize(trace []TraceEvent) string {
	counts := make(map[string]int)
	for _, ev := range trace {
		counts[ev.Action]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s x%d", name, counts[name])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
