package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/platformer/prefabs"
)

// Action names an input intent a scenario can replay.
type Action string

const (
	ActionMove        Action = "move"
	ActionJumpPress   Action = "jump_press"
	ActionJumpRelease Action = "jump_release"
	ActionDash        Action = "dash"
	ActionDrop        Action = "drop"
)

var (
	ErrNoEvents      = errors.New("scenario: no events")
	ErrUnknownAction = errors.New("scenario: unknown action")
	ErrBadEvent      = errors.New("scenario: bad event")
)

// tailTicks is how long a scenario without an explicit tick count runs past
// its last event.
const tailTicks = 60

type Event struct {
	Tick   int
	Action Action
	Value  float64
}

// Scenario is a timeline of input events produced by a tengo script. The
// script must define `events`, a list of maps with `tick`, `action` and an
// optional `value`, and may define `ticks`.
type Scenario struct {
	Name   string
	Ticks  int
	events []Event
}

// Inputs receives replayed events. *motion.Controller satisfies it.
type Inputs interface {
	OnMoveInput(axis float64)
	OnJumpPressed()
	OnJumpReleased()
	OnDashPressed()
	OnDropPressed()
}

// Load runs an embedded or on-disk script from prefabs/scripts.
func Load(name string) (*Scenario, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", name, err)
	}
	return Parse(name, src)
}

func Parse(name string, src []byte) (*Scenario, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Run()
	if err != nil {
		return nil, fmt.Errorf("scenario: run %s: %w", name, err)
	}
	if !compiled.IsDefined("events") {
		return nil, fmt.Errorf("%w: %s does not define events", ErrNoEvents, name)
	}

	rawEvents, ok := compiled.Get("events").Value().([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: events is not a list", ErrBadEvent, name)
	}
	if len(rawEvents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEvents, name)
	}

	events := make([]Event, 0, len(rawEvents))
	last := 0
	for i, raw := range rawEvents {
		ev, err := decodeEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: event %d: %w", name, i, err)
		}
		events = append(events, ev)
		if ev.Tick > last {
			last = ev.Tick
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })

	ticks := last + tailTicks
	if compiled.IsDefined("ticks") {
		v := compiled.Get("ticks")
		if v.ValueType() != "int" || v.Int() <= 0 {
			return nil, fmt.Errorf("%w: %s: ticks must be a positive int", ErrBadEvent, name)
		}
		ticks = v.Int()
		if ticks <= last {
			return nil, fmt.Errorf("%w: %s: ticks %d ends before the last event at %d", ErrBadEvent, name, ticks, last)
		}
	}

	return &Scenario{Name: name, Ticks: ticks, events: events}, nil
}

func decodeEvent(raw interface{}) (Event, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return Event{}, fmt.Errorf("%w: want a map, got %T", ErrBadEvent, raw)
	}

	tick, ok := m["tick"].(int64)
	if !ok || tick < 0 {
		return Event{}, fmt.Errorf("%w: tick must be a non-negative int", ErrBadEvent)
	}

	name, _ := m["action"].(string)
	action := Action(name)
	switch action {
	case ActionMove, ActionJumpPress, ActionJumpRelease, ActionDash, ActionDrop:
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}

	var value float64
	switch v := m["value"].(type) {
	case nil:
	case int64:
		value = float64(v)
	case float64:
		value = v
	default:
		return Event{}, fmt.Errorf("%w: value must be a number, got %T", ErrBadEvent, v)
	}

	return Event{Tick: int(tick), Action: action, Value: value}, nil
}

// Events returns all events ordered by tick.
func (s *Scenario) Events() []Event {
	return append([]Event(nil), s.events...)
}

// EventsAt returns the events scheduled for tick in script order.
func (s *Scenario) EventsAt(tick int) []Event {
	start := sort.Search(len(s.events), func(i int) bool { return s.events[i].Tick >= tick })
	end := start
	for end < len(s.events) && s.events[end].Tick == tick {
		end++
	}
	return s.events[start:end]
}

// Apply forwards ev to in.
func Apply(in Inputs, ev Event) {
	switch ev.Action {
	case ActionMove:
		in.OnMoveInput(ev.Value)
	case ActionJumpPress:
		in.OnJumpPressed()
	case ActionJumpRelease:
		in.OnJumpReleased()
	case ActionDash:
		in.OnDashPressed()
	case ActionDrop:
		in.OnDropPressed()
	}
}
