package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hookwatch/internal/gateway"
	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/kv"
	"github.com/roach88/hookwatch/internal/livesync"
	"github.com/roach88/hookwatch/internal/pager"
	"github.com/roach88/hookwatch/internal/project"
	"github.com/roach88/hookwatch/internal/testutil"
)

// Epoch is the first reading of the replay clock. Records without a
// timestamp are stamped Epoch, Epoch+1s, and so on.
var Epoch = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

// Run replays a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory kv store. The flow is
// enqueued in full and then drained by a livesync.Loop, so ordering is
// exactly what the live dashboard would see.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	backend := kv.NewMemory()
	defer backend.Close()

	clock := testutil.NewDeterministicClock(Epoch, time.Second)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in replays

	store := history.New(backend, history.WithClock(clock.Now), history.WithLogger(logger))
	pg := pager.New(store, backend, pager.WithLogger(logger))
	pg.Load(ctx)
	if scenario.PageSize != "" {
		setting, err := history.ParsePageSetting(scenario.PageSize)
		if err != nil {
			return nil, fmt.Errorf("page_size: %w", err)
		}
		pg.SetPageSize(ctx, setting)
	}

	result := NewResult()
	store.OnChange(func() {
		result.AddTrace(ActionHistoryChanged, map[string]interface{}{"count": store.Len()})
	})

	rec := newRecorder(result, scenario.Sessions, scenario.ActiveSession)
	consumer := livesync.NewConsumer(store, rec.collaborators(), logger)
	loop := livesync.NewLoop(consumer, logger)

	for i, step := range scenario.Flow {
		times := step.Repeat
		if times < 1 {
			times = 1
		}
		for n := 0; n < times; n++ {
			switch {
			case step.Connect:
				loop.NotifyConnect()
			case step.Disconnect:
				loop.NotifyDisconnect()
			default:
				ev, err := buildEvent(step, n)
				if err != nil {
					return nil, fmt.Errorf("flow step %d: %w", i, err)
				}
				loop.Do(func(ctx context.Context) {
					if err := consumer.Handle(ctx, ev); err != nil {
						result.AddTrace(ActionDropped, map[string]interface{}{
							"event":     ev.Name,
							"malformed": errors.Is(err, livesync.ErrMalformedEvent),
						})
					}
				})
			}
		}
	}

	loop.Stop()
	if err := loop.Run(ctx); err != nil {
		return nil, fmt.Errorf("replay interrupted: %w", err)
	}

	projector := project.New(project.WithLocale("id-ID"), project.WithLocation(time.UTC), project.WithClock(clock.Now))
	for _, row := range projector.Rows(0, store.Records()) {
		result.History = append(result.History, HistoryRow{
			Index:   row.Index,
			Session: row.SessionID,
			Event:   row.Event,
			URL:     row.URL,
			Status:  row.Status,
			Success: row.Success,
			Time:    row.Time,
		})
	}
	result.Sessions = append([]gateway.Session{}, rec.sessions...)
	result.Connection = consumer.State().String()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// buildEvent marshals a step's data with {{n}} replaced by the repetition.
func buildEvent(step FlowStep, n int) (livesync.Event, error) {
	if step.Data == nil {
		return livesync.Event{Name: step.Event}, nil
	}
	raw, err := json.Marshal(expand(step.Data, n))
	if err != nil {
		return livesync.Event{}, fmt.Errorf("failed to marshal data: %w", err)
	}
	return livesync.Event{Name: step.Event, Data: raw}, nil
}

func expand(v interface{}, n int) interface{} {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, "{{n}}", strconv.Itoa(n))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = expand(val, n)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = expand(val, n)
		}
		return out
	default:
		return v
	}
}
