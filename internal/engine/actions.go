package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sightline/sightline/internal/browser"
)

// Action is one scripted page interaction, parsed from a spec string
// like "click element #accept-cookies".
type Action struct {
	run  func(ctx context.Context, s browser.Session) error
	Spec string
	Name string
}

// Run executes the action against a session.
func (a Action) Run(ctx context.Context, s browser.Session) error {
	return a.run(ctx, s)
}

// actionPattern pairs a spec grammar with its builder. The table is
// data-driven so new verbs are one entry to add.
type actionPattern struct {
	build func(match []string) (func(ctx context.Context, s browser.Session) error, error)
	re    *regexp.Regexp
	name  string
}

var actionPatterns = []actionPattern{
	{
		name: "click-element",
		re:   regexp.MustCompile(`^click element (.+)$`),
		build: func(match []string) (func(context.Context, browser.Session) error, error) {
			selector := match[1]
			return func(ctx context.Context, s browser.Session) error {
				return s.Click(ctx, selector)
			}, nil
		},
	},
	{
		name: "set-field",
		re:   regexp.MustCompile(`^set field (.+?) to (.+)$`),
		build: func(match []string) (func(context.Context, browser.Session) error, error) {
			selector, value := match[1], match[2]
			return func(ctx context.Context, s browser.Session) error {
				return s.SetValue(ctx, selector, value)
			}, nil
		},
	},
	{
		name: "wait-for-element",
		re:   regexp.MustCompile(`^wait for element (.+?) to be visible$`),
		build: func(match []string) (func(context.Context, browser.Session) error, error) {
			selector := match[1]
			return func(ctx context.Context, s browser.Session) error {
				return s.WaitVisible(ctx, selector)
			}, nil
		},
	},
	{
		name: "pause",
		re:   regexp.MustCompile(`^pause (\S+)$`),
		build: func(match []string) (func(context.Context, browser.Session) error, error) {
			d, err := parsePause(match[1])
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context, _ browser.Session) error {
				timer := time.NewTimer(d)
				defer timer.Stop()
				select {
				case <-timer.C:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}, nil
		},
	},
}

// parsePause reads a pause duration. Bare integers are milliseconds.
func parsePause(raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("pause duration must not be negative: %q", raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid pause duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("pause duration must not be negative: %q", raw)
	}
	return d, nil
}

// ParseAction parses a single action spec.
func ParseAction(spec string) (Action, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return Action{}, fmt.Errorf("empty action")
	}

	for _, pattern := range actionPatterns {
		match := pattern.re.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		run, err := pattern.build(match)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", trimmed, err)
		}
		return Action{Spec: trimmed, Name: pattern.name, run: run}, nil
	}

	return Action{}, fmt.Errorf("unrecognized action %q", trimmed)
}

// ParseActions parses a list of action specs, failing on the first bad one.
func ParseActions(specs []string) ([]Action, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	actions := make([]Action, 0, len(specs))
	for _, spec := range specs {
		action, err := ParseAction(spec)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}
