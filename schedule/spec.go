// Package schedule runs agent tasks on a timetable: one-shot timestamps,
// fixed intervals or cron expressions. Firing a task hands it to a callback
// into the agent runtime; the scheduler itself knows nothing about models
// or tools.
package schedule

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// Kind discriminates the Spec union.
type Kind string

const (
	// KindAt fires once at an absolute timestamp.
	KindAt Kind = "at"
	// KindEvery fires on a fixed interval.
	KindEvery Kind = "every"
	// KindCron fires per a 5-field cron expression.
	KindCron Kind = "cron"
)

// Spec defines when a scheduled task fires.
type Spec struct {
	Kind  Kind          `json:"kind"`
	At    time.Time     `json:"at,omitempty"`
	Every time.Duration `json:"every,omitempty"`
	Expr  string        `json:"expr,omitempty"`
}

// Validate reports whether the spec is well formed for its kind.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindAt:
		if s.At.IsZero() {
			return fmt.Errorf("at schedule requires a timestamp")
		}
	case KindEvery:
		if s.Every <= 0 {
			return fmt.Errorf("every schedule requires a positive interval")
		}
	case KindCron:
		if s.Expr == "" {
			return fmt.Errorf("cron schedule requires an expression")
		}
		if !gronx.New().IsValid(s.Expr) {
			return fmt.Errorf("invalid cron expression: %s", s.Expr)
		}
	default:
		return fmt.Errorf("unknown schedule kind: %s", s.Kind)
	}
	return nil
}

// NextAfter computes the next fire time strictly after now. ok is false
// when the spec has no future occurrence (a one-shot whose time passed, or
// an unparsable expression).
func (s Spec) NextAfter(now time.Time) (time.Time, bool) {
	switch s.Kind {
	case KindAt:
		if s.At.After(now) {
			return s.At, true
		}
		return time.Time{}, false
	case KindEvery:
		if s.Every <= 0 {
			return time.Time{}, false
		}
		return now.Add(s.Every), true
	case KindCron:
		next, err := gronx.NextTickAfter(s.Expr, now, false)
		if err != nil {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}
