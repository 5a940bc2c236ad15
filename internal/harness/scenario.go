package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hookwatch/internal/history"
)

// Scenario is one replay: an initial dashboard state, a flow of transport
// notifications and push events, and assertions on the result.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// PageSize is a page setting such as "10" or "all". Empty keeps the
	// default.
	PageSize string `yaml:"page_size,omitempty"`

	// ActiveSession is the session whose pairing dialog starts open.
	ActiveSession string `yaml:"active_session,omitempty"`

	// Sessions seeds the session board.
	Sessions []SessionSeed `yaml:"sessions,omitempty"`

	// Flow is replayed in order through the sync loop.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// SessionSeed is one row of the initial session board.
type SessionSeed struct {
	ID     string `yaml:"id"`
	Status string `yaml:"status"`
}

// FlowStep is exactly one of: a push event, a connect or a disconnect.
type FlowStep struct {
	Event      string                 `yaml:"event,omitempty"`
	Data       map[string]interface{} `yaml:"data,omitempty"`
	Connect    bool                   `yaml:"connect,omitempty"`
	Disconnect bool                   `yaml:"disconnect,omitempty"`

	// Repeat replays the step this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the trace action (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are matched as a subset (trace_contains).
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Table is "history" or "sessions" (final_state, state_count).
	Table string `yaml:"table,omitempty"`

	// Where filters rows; every field must match.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect is matched as a subset against the first filtered row.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of trace entries or rows.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertStateCount    = "state_count"
)

// State table names.
const (
	TableHistory  = "history"
	TableSessions = "sessions"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if s.PageSize != "" {
		if _, err := history.ParsePageSetting(s.PageSize); err != nil {
			return fmt.Errorf("page_size: %w", err)
		}
	}

	for i, step := range s.Flow {
		kinds := 0
		if step.Event != "" {
			kinds++
		}
		if step.Connect {
			kinds++
		}
		if step.Disconnect {
			kinds++
		}
		if kinds != 1 {
			return fmt.Errorf("flow step %d: exactly one of event, connect, disconnect is required", i)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("flow step %d: repeat must not be negative", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains, AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("%s requires action", a.Type)
		}
	case AssertTraceOrder:
		if len(a.Actions) < 2 {
			return fmt.Errorf("trace_order requires at least two actions")
		}
	case AssertFinalState, AssertStateCount:
		if a.Table != TableHistory && a.Table != TableSessions {
			return fmt.Errorf("%s: unknown table %q", a.Type, a.Table)
		}
		if a.Type == AssertFinalState && len(a.Expect) == 0 {
			return fmt.Errorf("final_state requires expect")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
