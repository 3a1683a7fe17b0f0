// Package compiler converts the raw per-element attribute map into the typed
// trigger configuration model. All parse failures except a missing state
// list are non-fatal: the offending attribute degrades to its documented
// fallback and a diagnostic records what happened.
package compiler

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/shift/pkg/domain"
)

// Defaults carries the process-wide fallbacks applied when an element has no
// explicit override.
type Defaults struct {
	DebounceEnabled bool
	DebounceWait    time.Duration
}

// StandardDefaults matches the documented process-wide defaults.
var StandardDefaults = Defaults{DebounceEnabled: true, DebounceWait: 10 * time.Millisecond}

// Parser compiles attribute maps into trigger configurations.
type Parser struct {
	defaults Defaults
}

// NewParser creates a parser with the given process-wide defaults.
func NewParser(defaults Defaults) *Parser {
	return &Parser{defaults: defaults}
}

// Parse builds a validated TriggerConfig from raw attributes. The only fatal
// condition is a missing or empty state list; every other malformed value
// falls back and is reported through the returned diagnostics.
func (p *Parser) Parse(attrs map[string]string) (*domain.TriggerConfig, []domain.Diagnostic, error) {
	var diags []domain.Diagnostic
	warn := func(attr, value, msg string) {
		diags = append(diags, domain.Diagnostic{Attr: attr, Value: value, Message: msg})
	}

	states := strings.Fields(attrs[domain.AttrStates])
	if len(states) == 0 {
		return nil, diags, domain.ErrNoStates
	}

	cfg := &domain.TriggerConfig{
		States:          states,
		AllStates:       uniqueStates(states),
		ActiveSpace:     domain.DefaultActiveSpace,
		ViewportAlign:   domain.AlignMiddle,
		Hover:           domain.DefaultHoverEvents,
		ClickSelector:   attrs[domain.AttrClickTrigger],
		HoverSelector:   attrs[domain.AttrHoverTrigger],
		CascadeSelector: attrs[domain.AttrCascade],
		Debounce: domain.DebounceSpec{
			Enabled: p.defaults.DebounceEnabled,
			Wait:    p.defaults.DebounceWait,
		},
	}

	cfg.InitialState = states[0]
	if v, ok := attrs[domain.AttrInitialState]; ok && v != "" {
		if cfg.StateIndex(v) >= 0 {
			cfg.InitialState = v
		} else {
			warn(domain.AttrInitialState, v, "not in state list, falling back to first state")
		}
	}
	cfg.InitialIndex = cfg.StateIndex(cfg.InitialState)

	cfg.Ranges = p.parseRanges(attrs, warn)

	if v, ok := attrs[domain.AttrAdvancement]; ok && v != "" {
		switch domain.Advancement(v) {
		case domain.AdvancementAdvance, domain.AdvancementAdvanceReset,
			domain.AdvancementToggleInitial, domain.AdvancementAligned:
			cfg.Advancement = domain.Advancement(v)
		default:
			warn(domain.AttrAdvancement, v, "unknown advancement keyword, element will not advance")
			cfg.Advancement = domain.AdvancementNone
		}
	} else if len(cfg.Ranges) > 0 {
		cfg.Advancement = domain.AdvancementAligned
	} else {
		cfg.Advancement = domain.AdvancementAdvance
	}

	if v, ok := attrs[domain.AttrActiveSpace]; ok && v != "" {
		if space, ok := parseActiveSpace(v); ok {
			cfg.ActiveSpace = space
		} else {
			warn(domain.AttrActiveSpace, v, "invalid active space, falling back to always active")
		}
	}

	if v, ok := attrs[domain.AttrDebounce]; ok && v != "" {
		if spec, ok := parseDebounce(v); ok {
			cfg.Debounce = spec
		} else {
			warn(domain.AttrDebounce, v, "invalid debounce spec, using process defaults")
		}
	}

	if v, ok := attrs[domain.AttrDelay]; ok && v != "" {
		if d, err := ParseTimeSpec(v); err == nil {
			cfg.Delay = d
		} else {
			warn(domain.AttrDelay, v, err.Error())
		}
	}

	if v, ok := attrs[domain.AttrTimer]; ok && v != "" {
		if spec, err := ParseTimerSpec(v); err == nil {
			cfg.Timer = spec
		} else {
			warn(domain.AttrTimer, v, err.Error())
		}
	}

	if v, ok := attrs[domain.AttrViewportAlign]; ok && v != "" {
		switch domain.ViewportAlign(v) {
		case domain.AlignTop, domain.AlignMiddle, domain.AlignBottom:
			cfg.ViewportAlign = domain.ViewportAlign(v)
		default:
			warn(domain.AttrViewportAlign, v, "unknown alignment, using middle")
		}
	}

	if v, ok := attrs[domain.AttrScrollAnimate]; ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ScrollAnimate = b
		} else {
			warn(domain.AttrScrollAnimate, v, "not a boolean")
		}
	}

	if v, ok := attrs[domain.AttrHoverEvents]; ok && v != "" {
		cfg.Hover = parseHoverEvents(v, warn)
	}

	return cfg, diags, nil
}

// parseRanges resolves the scroll ranges from either explicit range pairs or
// a point list. Explicit ranges win when both attributes are present.
func (p *Parser) parseRanges(attrs map[string]string, warn func(attr, value, msg string)) []domain.Range {
	if v, ok := attrs[domain.AttrScrollRanges]; ok && v != "" {
		if _, dup := attrs[domain.AttrScrollPoints]; dup {
			warn(domain.AttrScrollPoints, "", "ignored because explicit scroll ranges are present")
		}
		var ranges []domain.Range
		for _, entry := range splitList(v) {
			r, ok := parseRangeEntry(entry)
			if !ok {
				warn(domain.AttrScrollRanges, entry, "malformed range entry dropped")
				continue
			}
			ranges = append(ranges, r)
		}
		return domain.MergeRanges(ranges)
	}

	if v, ok := attrs[domain.AttrScrollPoints]; ok && v != "" {
		var points []float64
		for _, entry := range splitList(v) {
			f, err := strconv.ParseFloat(entry, 64)
			if err != nil {
				warn(domain.AttrScrollPoints, entry, "not a number, point dropped")
				continue
			}
			if len(points) > 0 && f <= points[len(points)-1] {
				warn(domain.AttrScrollPoints, entry, "points must be ascending, point dropped")
				continue
			}
			points = append(points, f)
		}
		return domain.MergeRanges(domain.RangesFromPoints(points))
	}

	return nil
}

// ParseTimerSpec parses a timer attribute of shape "<mode>:<spec>", where
// mode is one of delay, loop, interval or "loop interval" and spec is one or
// more comma-separated time specs.
func ParseTimerSpec(raw string) (*domain.TimerSpec, error) {
	mode, rest, found := strings.Cut(raw, ":")
	if !found {
		return nil, errMissingColon(raw)
	}
	mode = strings.TrimSpace(mode)

	var m domain.TimerMode
	switch mode {
	case string(domain.TimerDelay):
		m = domain.TimerDelay
	case string(domain.TimerLoop):
		m = domain.TimerLoop
	case string(domain.TimerInterval):
		m = domain.TimerInterval
	case string(domain.TimerLoopInterval):
		m = domain.TimerLoopInterval
	default:
		return nil, errUnknownMode(mode)
	}

	var durations []time.Duration
	for _, entry := range splitList(rest) {
		d, err := ParseTimeSpec(entry)
		if err != nil {
			return nil, err
		}
		durations = append(durations, d)
	}
	if len(durations) == 0 {
		return nil, errEmptySpec(raw)
	}
	if (m == domain.TimerDelay || m == domain.TimerLoop) && len(durations) > 1 {
		return nil, errSingleDuration(mode)
	}

	return &domain.TimerSpec{Mode: m, Durations: durations}, nil
}

func parseActiveSpace(raw string) (domain.ActiveSpace, bool) {
	if raw == domain.DisabledKeyword {
		return domain.ActiveSpace{Disabled: true}, true
	}
	parts := splitList(raw)
	if len(parts) != 2 {
		return domain.ActiveSpace{}, false
	}
	min, err1 := strconv.ParseFloat(parts[0], 64)
	max, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || min > max {
		return domain.ActiveSpace{}, false
	}
	return domain.ActiveSpace{Min: min, Max: max}, true
}

func parseDebounce(raw string) (domain.DebounceSpec, bool) {
	enabledPart, waitPart, found := strings.Cut(raw, ":")
	if !found {
		return domain.DebounceSpec{}, false
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(enabledPart))
	if err != nil {
		return domain.DebounceSpec{}, false
	}
	wait, err := ParseTimeSpec(strings.TrimSpace(waitPart))
	if err != nil {
		return domain.DebounceSpec{}, false
	}
	return domain.DebounceSpec{Enabled: enabled, Wait: wait, Explicit: true}, true
}

func parseHoverEvents(raw string, warn func(attr, value, msg string)) domain.HoverEvents {
	var h domain.HoverEvents
	for _, entry := range splitList(raw) {
		switch entry {
		case "enter":
			h.Enter = true
		case "leave":
			h.Leave = true
		case "hold":
			h.Hold = true
		default:
			warn(domain.AttrHoverEvents, entry, "unknown hover event dropped")
		}
	}
	return h
}

func parseRangeEntry(entry string) (domain.Range, bool) {
	startPart, endPart, found := strings.Cut(entry, "-")
	if !found {
		return domain.Range{}, false
	}
	start, err1 := strconv.ParseFloat(strings.TrimSpace(startPart), 64)
	end, err2 := strconv.ParseFloat(strings.TrimSpace(endPart), 64)
	if err1 != nil || err2 != nil || end < start {
		return domain.Range{}, false
	}
	return domain.Range{Start: start, End: end}, true
}

func uniqueStates(states []string) []string {
	seen := make(map[string]struct{}, len(states))
	unique := make([]string, 0, len(states))
	for _, s := range states {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	return unique
}

// splitList splits a comma-separated attribute value, trimming whitespace
// and dropping empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
